package reports

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
	"github.com/MarselKurniawan/erp-system/internal/shared"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func date(s string) time.Time {
	t, err := shared.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func requireAmount(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, amt(want).Equal(got), "want %s, got %s %v", want, got.String(), msgAndArgs)
}

func parent(id int64) *int64 { return &id }

// Account ids used by the fixture chart.
const (
	accKas int64 = iota + 1
	accBank
	accGiro
	accDeposito
	accPiutang
	accPeralatan
	accAkumulasi
	accHutangUsaha
	accPPN
	accHutangBank
	accModal
	accSaldoAwal
	accPenjualan
	accHPP
	accGaji
	accPenyusutan
	accBunga
	accBebanBank
	accDormant
)

func fixtureChart() []AccountRow {
	return []AccountRow{
		{ID: accKas, Code: "1101", Name: "Kas Besar", Type: accounting.AccountTypeAsset, IsActive: true},
		{ID: accBank, Code: "1102", Name: "Bank BCA", Type: accounting.AccountTypeAsset, IsActive: true},
		{ID: accGiro, Code: "1103", Name: "Giro Mandiri", Type: accounting.AccountTypeAsset, IsActive: true},
		{ID: accDeposito, Code: "1104", Name: "Deposito Berjangka", Type: accounting.AccountTypeAsset, IsActive: true},
		{ID: accPiutang, Code: "1201", Name: "Piutang Usaha", Type: accounting.AccountTypeAsset, IsActive: true},
		{ID: accPeralatan, Code: "1601", Name: "Peralatan Kantor", Type: accounting.AccountTypeAsset, IsActive: true},
		{ID: accAkumulasi, Code: "1602", Name: "Akumulasi Penyusutan Peralatan", Type: accounting.AccountTypeAsset, IsActive: true},
		{ID: accHutangUsaha, Code: "2101", Name: "Hutang Usaha", Type: accounting.AccountTypeLiability, Subclass: accounting.SubclassShortTermLiability, IsActive: true},
		{ID: accPPN, Code: "2102", Name: "Hutang Pajak Jangka Pendek", Type: accounting.AccountTypeLiability, IsActive: true},
		{ID: accHutangBank, Code: "2201", Name: "Hutang Bank Jangka Panjang", Type: accounting.AccountTypeLiability, IsActive: true},
		{ID: accModal, Code: "3101", Name: "Modal Disetor", Type: accounting.AccountTypeEquity, IsActive: true},
		{ID: accSaldoAwal, Code: "3201", Name: "Ekuitas Saldo Awal", Type: accounting.AccountTypeEquity, IsActive: true},
		{ID: accPenjualan, Code: "4101", Name: "Penjualan", Type: accounting.AccountTypeRevenue, ParentID: parent(40), ParentName: "Pendapatan Usaha", IsActive: true},
		{ID: accHPP, Code: "5101", Name: "Harga Pokok Penjualan", Type: accounting.AccountTypeExpense, IsActive: true},
		{ID: accGaji, Code: "6101", Name: "Beban Gaji", Type: accounting.AccountTypeExpense, ParentID: parent(60), ParentName: "Beban Operasional", IsActive: true},
		{ID: accPenyusutan, Code: "6201", Name: "Beban Penyusutan", Type: accounting.AccountTypeExpense, IsActive: true},
		{ID: accBunga, Code: "7101", Name: "Pendapatan Bunga", Type: accounting.AccountTypeRevenue, IsActive: true},
		{ID: accBebanBank, Code: "8101", Name: "Beban Administrasi Bank", Type: accounting.AccountTypeExpense, IsActive: true},
		{ID: accDormant, Code: "1999", Name: "Kas Lama", Type: accounting.AccountTypeAsset, IsActive: false},
	}
}

type leg struct {
	account int64
	debit   string
	credit  string
}

func dr(account int64, v string) leg { return leg{account: account, debit: v, credit: "0"} }
func cr(account int64, v string) leg { return leg{account: account, debit: "0", credit: v} }

// journal accumulates posted ledger rows in entry order.
type journal struct {
	rows    []LedgerRow
	entryID int64
	lineID  int64
}

func (j *journal) post(day, description string, legs ...leg) {
	j.entryID++
	for _, l := range legs {
		j.lineID++
		j.rows = append(j.rows, LedgerRow{
			AccountID:   l.account,
			EntryID:     j.entryID,
			LineID:      j.lineID,
			Date:        date(day),
			Number:      accountingNumber(j.entryID),
			Description: description,
			Debit:       amt(l.debit),
			Credit:      amt(l.credit),
		})
	}
}

func accountingNumber(id int64) string {
	return accounting.FormatEntryNumber(date("2024-01-01"), id)
}

// fixtureJournal is a small Indonesian trading company: opening balances at
// the end of 2023, one month of trading in January 2024 and a loan in February.
func fixtureJournal() *journal {
	j := &journal{}
	j.post("2023-12-31", "Saldo awal",
		dr(accKas, "5000000"), dr(accPeralatan, "12000000"),
		cr(accModal, "10000000"), cr(accSaldoAwal, "7000000"))
	j.post("2023-12-31", "Penjualan tunai 2023",
		dr(accBank, "1000000"), cr(accPenjualan, "1000000"))
	j.post("2024-01-05", "Faktur penjualan",
		dr(accPiutang, "11100000"), cr(accPenjualan, "10000000"), cr(accPPN, "1100000"))
	j.post("2024-01-06", "Pembelian barang",
		dr(accHPP, "6000000"), cr(accHutangUsaha, "6000000"))
	j.post("2024-01-15", "Pelunasan piutang",
		dr(accBank, "5000000"), cr(accPiutang, "5000000"))
	j.post("2024-01-20", "Gaji Januari",
		dr(accGaji, "2000000"), cr(accKas, "2000000"))
	j.post("2024-01-31", "Penyusutan Januari",
		dr(accPenyusutan, "250000"), cr(accAkumulasi, "250000"))
	j.post("2024-01-31", "Bunga giro",
		dr(accGiro, "50000"), cr(accBunga, "50000"))
	j.post("2024-01-31", "Biaya administrasi bank",
		dr(accBebanBank, "15000"), cr(accBank, "15000"))
	j.post("2024-02-01", "Pinjaman bank",
		dr(accBank, "20000000"), cr(accHutangBank, "20000000"))
	return j
}

func inWindow(day time.Time, w Window) bool {
	day = shared.DateOnly(day)
	if !w.From.IsZero() && day.Before(shared.DateOnly(w.From)) {
		return false
	}
	if !w.To.IsZero() && day.After(shared.DateOnly(w.To)) {
		return false
	}
	return true
}

// sumWindow aggregates rows the way the balances query does.
func sumWindow(rows []LedgerRow, w Window) []BalanceRow {
	idx := make(map[int64]*BalanceRow)
	var order []int64
	for _, row := range rows {
		if !inWindow(row.Date, w) {
			continue
		}
		b, ok := idx[row.AccountID]
		if !ok {
			b = &BalanceRow{AccountID: row.AccountID, Debit: decimal.Zero, Credit: decimal.Zero}
			idx[row.AccountID] = b
			order = append(order, row.AccountID)
		}
		b.Debit = b.Debit.Add(row.Debit)
		b.Credit = b.Credit.Add(row.Credit)
	}
	out := make([]BalanceRow, 0, len(order))
	for _, id := range order {
		out = append(out, *idx[id])
	}
	return out
}

// memRepository serves report queries from in-memory rows.
type memRepository struct {
	mu       sync.Mutex
	accounts map[int64][]AccountRow
	rows     map[int64][]LedgerRow
	invoices map[AgingKind][]InvoiceRow
	calls    int
	err      error
}

func newMemRepository() *memRepository {
	return &memRepository{
		accounts: make(map[int64][]AccountRow),
		rows:     make(map[int64][]LedgerRow),
		invoices: make(map[AgingKind][]InvoiceRow),
	}
}

func (m *memRepository) Accounts(_ context.Context, companyID int64) ([]AccountRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return append([]AccountRow(nil), m.accounts[companyID]...), nil
}

func (m *memRepository) Balances(_ context.Context, companyID int64, window Window) ([]BalanceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return sumWindow(m.rows[companyID], window), nil
}

func (m *memRepository) LedgerLines(_ context.Context, companyID int64, window Window, accountIDs []int64) ([]LedgerRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	wanted := make(map[int64]bool, len(accountIDs))
	for _, id := range accountIDs {
		wanted[id] = true
	}
	var out []LedgerRow
	for _, row := range m.rows[companyID] {
		if !inWindow(row.Date, window) {
			continue
		}
		if len(wanted) > 0 && !wanted[row.AccountID] {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (m *memRepository) OpenInvoices(_ context.Context, filter AgingFilter) ([]InvoiceRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []InvoiceRow
	for _, inv := range m.invoices[filter.Kind] {
		if filter.PartyID != 0 && inv.PartyID != filter.PartyID {
			continue
		}
		out = append(out, inv)
	}
	return out, nil
}

func (m *memRepository) CompanyIDs(context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]int64, 0, len(m.accounts))
	for id := range m.accounts {
		ids = append(ids, id)
	}
	return ids, nil
}

func (m *memRepository) append(companyID int64, rows ...LedgerRow) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[companyID] = append(m.rows[companyID], rows...)
}

func (m *memRepository) buildCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
