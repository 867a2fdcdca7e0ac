package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// FiscalYearStart returns the first day of the fiscal year containing day.
func FiscalYearStart(day time.Time, startMonth int) time.Time {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 1
	}
	year := day.Year()
	if int(day.Month()) < startMonth {
		year--
	}
	return time.Date(year, time.Month(startMonth), 1, 0, 0, 0, 0, time.UTC)
}

// BalanceSheetInput carries the sums a balance sheet is built from.
type BalanceSheetInput struct {
	AsOf            time.Time
	FiscalYearStart time.Time
	// Cumulative sums of every posted line up to AsOf.
	Cumulative []BalanceRow
	// Sums from FiscalYearStart through AsOf.
	CurrentYear []BalanceRow
	// Sums of every posted line before FiscalYearStart.
	PriorYears []BalanceRow
}

// BuildBalanceSheet classifies asset, liability and equity accounts and adds
// unclosed earnings so that assets equal liabilities plus equity.
func BuildBalanceSheet(accounts []AccountRow, in BalanceSheetInput) BalanceSheet {
	idx := indexBalances(in.Cumulative)
	bs := BalanceSheet{
		AsOf:            in.AsOf.Format(shared.DateLayout),
		FiscalYearStart: in.FiscalYearStart.Format(shared.DateLayout),
		Assets: AssetSection{
			Current:      []StatementLine{},
			Fixed:        []StatementLine{},
			Depreciation: []StatementLine{},
			Totals: AssetTotals{
				Current: decimal.Zero, Fixed: decimal.Zero, Depreciation: decimal.Zero,
				NetFixed: decimal.Zero, Total: decimal.Zero,
			},
		},
		Liabilities: LiabilitySection{
			ShortTerm:      []StatementLine{},
			LongTerm:       []StatementLine{},
			TotalShortTerm: decimal.Zero,
			TotalLongTerm:  decimal.Zero,
			Total:          decimal.Zero,
		},
		Equity: EquitySection{
			Capital:        []StatementLine{},
			OpeningBalance: []StatementLine{},
			Total:          decimal.Zero,
		},
	}

	equityAccounts := decimal.Zero
	for _, acc := range accounts {
		class := codeClass(acc.Code)
		if class < 1 || class > 3 {
			continue
		}
		balance := idx.balance(acc)
		if balance.IsZero() {
			continue
		}
		line := StatementLine{AccountID: acc.ID, Code: acc.Code, Name: acc.Name, Amount: balance}
		switch class {
		case 1:
			switch classifyAsset(acc) {
			case assetCurrent:
				bs.Assets.Current = append(bs.Assets.Current, line)
				bs.Assets.Totals.Current = bs.Assets.Totals.Current.Add(balance)
			case assetFixed:
				bs.Assets.Fixed = append(bs.Assets.Fixed, line)
				bs.Assets.Totals.Fixed = bs.Assets.Totals.Fixed.Add(balance)
			case assetContra:
				// Contra assets carry credit balances; show them as a positive deduction.
				line.Amount = balance.Neg()
				bs.Assets.Depreciation = append(bs.Assets.Depreciation, line)
				bs.Assets.Totals.Depreciation = bs.Assets.Totals.Depreciation.Add(line.Amount)
			}
		case 2:
			if classifyLiability(acc) == liabilityShortTerm {
				bs.Liabilities.ShortTerm = append(bs.Liabilities.ShortTerm, line)
				bs.Liabilities.TotalShortTerm = bs.Liabilities.TotalShortTerm.Add(balance)
			} else {
				bs.Liabilities.LongTerm = append(bs.Liabilities.LongTerm, line)
				bs.Liabilities.TotalLongTerm = bs.Liabilities.TotalLongTerm.Add(balance)
			}
		case 3:
			if classifyEquity(acc) == equityOpeningBalance {
				bs.Equity.OpeningBalance = append(bs.Equity.OpeningBalance, line)
			} else {
				bs.Equity.Capital = append(bs.Equity.Capital, line)
			}
			equityAccounts = equityAccounts.Add(balance)
		}
	}

	for _, lines := range [][]StatementLine{
		bs.Assets.Current, bs.Assets.Fixed, bs.Assets.Depreciation,
		bs.Liabilities.ShortTerm, bs.Liabilities.LongTerm,
		bs.Equity.Capital, bs.Equity.OpeningBalance,
	} {
		sortLines(lines)
	}

	bs.Assets.Totals.NetFixed = bs.Assets.Totals.Fixed.Sub(bs.Assets.Totals.Depreciation)
	bs.Assets.Totals.Total = bs.Assets.Totals.Current.Add(bs.Assets.Totals.NetFixed)
	bs.Liabilities.Total = bs.Liabilities.TotalShortTerm.Add(bs.Liabilities.TotalLongTerm)

	bs.Equity.CurrentYearEarnings = NetIncome(accounts, in.CurrentYear)
	bs.Equity.PriorYearEarnings = NetIncome(accounts, in.PriorYears)
	bs.Equity.Total = equityAccounts.Add(bs.Equity.CurrentYearEarnings).Add(bs.Equity.PriorYearEarnings)

	bs.TotalLiabilitiesAndEquity = bs.Liabilities.Total.Add(bs.Equity.Total)
	bs.Balanced = bs.Assets.Totals.Total.Sub(bs.TotalLiabilitiesAndEquity).Abs().LessThanOrEqual(accounting.BalanceTolerance)
	return bs
}

func sortLines(lines []StatementLine) {
	sort.SliceStable(lines, func(i, j int) bool { return lines[i].Code < lines[j].Code })
}
