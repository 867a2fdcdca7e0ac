package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// BuildTrialBalance places the as-of balance of every active account in its
// debit or credit column. Zero balances are omitted.
func BuildTrialBalance(accounts []AccountRow, sums []BalanceRow, asOf time.Time) TrialBalance {
	idx := indexBalances(sums)
	result := TrialBalance{
		AsOf:         asOf.Format(shared.DateLayout),
		Entries:      []TrialBalanceEntry{},
		TotalDebits:  decimal.Zero,
		TotalCredits: decimal.Zero,
	}
	for _, acc := range accounts {
		if !acc.IsActive {
			continue
		}
		balance := idx.balance(acc)
		if balance.IsZero() {
			continue
		}
		debit, credit := accounting.SplitBalance(acc.Type, balance)
		result.Entries = append(result.Entries, TrialBalanceEntry{
			AccountID:     acc.ID,
			Code:          acc.Code,
			Name:          acc.Name,
			Type:          acc.Type,
			DebitBalance:  debit,
			CreditBalance: credit,
		})
		result.TotalDebits = result.TotalDebits.Add(debit)
		result.TotalCredits = result.TotalCredits.Add(credit)
	}
	sort.SliceStable(result.Entries, func(i, j int) bool {
		return result.Entries[i].Code < result.Entries[j].Code
	})
	result.Balanced = result.TotalDebits.Sub(result.TotalCredits).Abs().LessThanOrEqual(accounting.BalanceTolerance)
	return result
}
