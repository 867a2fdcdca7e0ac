package reports

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// GLFilter selects accounts and the period of a general ledger.
type GLFilter struct {
	CompanyID            int64
	Start                time.Time
	End                  time.Time
	AccountIDs           []int64
	CodePrefix           string
	OnlyWithTransactions bool
}

func (f GLFilter) matches(acc AccountRow) bool {
	if f.CodePrefix != "" && !strings.HasPrefix(acc.Code, f.CodePrefix) {
		return false
	}
	if len(f.AccountIDs) == 0 {
		return true
	}
	for _, id := range f.AccountIDs {
		if id == acc.ID {
			return true
		}
	}
	return false
}

// BuildGeneralLedger computes, per account, the opening balance from
// opening sums, then applies every period line in (date, entry, line) order
// to produce running balances. Lines outside the period are ignored, so an
// end before start yields ledgers whose closing equals opening.
func BuildGeneralLedger(accounts []AccountRow, opening []BalanceRow, lines []LedgerRow, filter GLFilter) GeneralLedger {
	openIdx := indexBalances(opening)
	start := shared.DateOnly(filter.Start)
	end := shared.DateOnly(filter.End)

	byAccount := make(map[int64][]LedgerRow)
	for _, line := range lines {
		d := shared.DateOnly(line.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		byAccount[line.AccountID] = append(byAccount[line.AccountID], line)
	}

	result := GeneralLedger{
		Start:    start.Format(shared.DateLayout),
		End:      end.Format(shared.DateLayout),
		Accounts: []AccountLedger{},
	}
	for _, acc := range accounts {
		if !filter.matches(acc) {
			continue
		}
		period := byAccount[acc.ID]
		_, _, hasOpening := openIdx.sums(acc.ID)
		if filter.OnlyWithTransactions && len(period) == 0 {
			continue
		}
		if !acc.IsActive && len(period) == 0 && !hasOpening {
			continue
		}
		sort.SliceStable(period, func(i, j int) bool {
			a, b := period[i], period[j]
			if !a.Date.Equal(b.Date) {
				return a.Date.Before(b.Date)
			}
			if a.EntryID != b.EntryID {
				return a.EntryID < b.EntryID
			}
			return a.LineID < b.LineID
		})

		ledger := AccountLedger{
			AccountID:      acc.ID,
			Code:           acc.Code,
			Name:           acc.Name,
			Type:           acc.Type,
			OpeningBalance: openIdx.balance(acc),
			Entries:        make([]LedgerEntry, 0, len(period)),
			PeriodDebit:    decimal.Zero,
			PeriodCredit:   decimal.Zero,
		}
		running := ledger.OpeningBalance
		for _, line := range period {
			running = running.Add(accounting.SignedBalance(acc.Type, line.Debit, line.Credit))
			ledger.PeriodDebit = ledger.PeriodDebit.Add(line.Debit)
			ledger.PeriodCredit = ledger.PeriodCredit.Add(line.Credit)
			ledger.Entries = append(ledger.Entries, LedgerEntry{
				Date:           line.Date.Format(shared.DateLayout),
				EntryID:        line.EntryID,
				Number:         line.Number,
				Description:    line.Description,
				ReferenceType:  line.ReferenceType,
				ReferenceID:    line.ReferenceID,
				Debit:          line.Debit,
				Credit:         line.Credit,
				RunningBalance: running,
			})
		}
		ledger.ClosingBalance = running
		result.Accounts = append(result.Accounts, ledger)
	}
	sort.SliceStable(result.Accounts, func(i, j int) bool {
		return result.Accounts[i].Code < result.Accounts[j].Code
	})
	return result
}
