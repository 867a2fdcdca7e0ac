package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
)

// AccountRow is one chart of accounts record as read by the aggregators.
type AccountRow struct {
	ID         int64
	Code       string
	Name       string
	Type       accounting.AccountType
	Subclass   accounting.Subclass
	ParentID   *int64
	ParentName string
	IsActive   bool
}

// BalanceRow sums posted lines of one account over a window.
type BalanceRow struct {
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// LedgerRow is one posted journal line joined with its entry header.
type LedgerRow struct {
	AccountID     int64
	EntryID       int64
	LineID        int64
	Date          time.Time
	Number        string
	Description   string
	ReferenceType string
	ReferenceID   string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
}

// InvoiceRow is an unpaid sales or purchase invoice.
type InvoiceRow struct {
	ID          int64
	PartyID     int64
	PartyName   string
	Number      string
	InvoiceDate time.Time
	DueDate     time.Time
	Total       decimal.Decimal
	Paid        decimal.Decimal
}

// Window is an inclusive date range. A zero From or To leaves that side open.
type Window struct {
	From time.Time
	To   time.Time
}

// Through returns the window of every entry dated on or before day.
func Through(day time.Time) Window {
	return Window{To: day}
}

// Before returns the window of every entry dated strictly before day.
func Before(day time.Time) Window {
	return Window{To: day.AddDate(0, 0, -1)}
}

type balanceIndex map[int64]BalanceRow

func indexBalances(rows []BalanceRow) balanceIndex {
	idx := make(balanceIndex, len(rows))
	for _, row := range rows {
		cur, ok := idx[row.AccountID]
		if !ok {
			idx[row.AccountID] = row
			continue
		}
		cur.Debit = cur.Debit.Add(row.Debit)
		cur.Credit = cur.Credit.Add(row.Credit)
		idx[row.AccountID] = cur
	}
	return idx
}

// sums returns the debit and credit totals of an account, zero when absent.
func (idx balanceIndex) sums(accountID int64) (decimal.Decimal, decimal.Decimal, bool) {
	row, ok := idx[accountID]
	if !ok {
		return decimal.Zero, decimal.Zero, false
	}
	return row.Debit, row.Credit, true
}

// balance applies the account's sign convention to its window sums.
func (idx balanceIndex) balance(acc AccountRow) decimal.Decimal {
	debit, credit, _ := idx.sums(acc.ID)
	return accounting.SignedBalance(acc.Type, debit, credit)
}
