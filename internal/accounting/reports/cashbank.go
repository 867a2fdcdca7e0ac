package reports

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// BuildCashBank buckets cash-like asset accounts into Kas, Bank, Giro and
// Other. Every bucket is present, zero-filled when empty.
func BuildCashBank(accounts []AccountRow, sums []BalanceRow, asOf time.Time) CashBankPosition {
	idx := indexBalances(sums)
	buckets := make(map[CashBucketName]*CashBucket, len(cashBucketOrder))
	for _, name := range cashBucketOrder {
		buckets[name] = &CashBucket{Name: name, Accounts: []StatementLine{}, Total: decimal.Zero}
	}
	for _, acc := range accounts {
		name, ok := classifyCash(acc)
		if !ok {
			continue
		}
		balance := idx.balance(acc)
		if balance.IsZero() {
			continue
		}
		b := buckets[name]
		b.Accounts = append(b.Accounts, StatementLine{AccountID: acc.ID, Code: acc.Code, Name: acc.Name, Amount: balance})
		b.Total = b.Total.Add(balance)
	}
	position := CashBankPosition{
		AsOf:       asOf.Format(shared.DateLayout),
		Buckets:    make([]CashBucket, 0, len(cashBucketOrder)),
		GrandTotal: decimal.Zero,
	}
	for _, name := range cashBucketOrder {
		b := buckets[name]
		sortLines(b.Accounts)
		position.Buckets = append(position.Buckets, *b)
		position.GrandTotal = position.GrandTotal.Add(b.Total)
	}
	return position
}
