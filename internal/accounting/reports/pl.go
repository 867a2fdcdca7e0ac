package reports

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// P&L categories by leading code digit.
const (
	plRevenue      byte = 4
	plCost         byte = 5
	plOperating    byte = 6
	plOtherIncome  byte = 7
	plOtherExpense byte = 8
)

var plDefaultLabels = map[byte]string{
	plRevenue:      "Revenue",
	plCost:         "Cost of Sales",
	plOperating:    "Operating Expenses",
	plOtherIncome:  "Other Income",
	plOtherExpense: "Other Expenses",
}

// plTotals carries the category totals shared by the P&L and the
// earnings lines of the balance sheet.
type plTotals struct {
	revenue, cost, operating, otherIncome, otherExpense decimal.Decimal
}

func (t plTotals) grossProfit() decimal.Decimal {
	return t.revenue.Sub(t.cost)
}

func (t plTotals) operatingIncome() decimal.Decimal {
	return t.grossProfit().Sub(t.operating)
}

func (t plTotals) netIncome() decimal.Decimal {
	return t.operatingIncome().Add(t.otherIncome).Sub(t.otherExpense)
}

func sumProfitAndLoss(accounts []AccountRow, idx balanceIndex) plTotals {
	totals := plTotals{decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero}
	for _, acc := range accounts {
		amount := idx.balance(acc)
		switch codeClass(acc.Code) {
		case plRevenue:
			totals.revenue = totals.revenue.Add(amount)
		case plCost:
			totals.cost = totals.cost.Add(amount)
		case plOperating:
			totals.operating = totals.operating.Add(amount)
		case plOtherIncome:
			totals.otherIncome = totals.otherIncome.Add(amount)
		case plOtherExpense:
			totals.otherExpense = totals.otherExpense.Add(amount)
		}
	}
	return totals
}

// NetIncome returns the net income implied by window sums.
func NetIncome(accounts []AccountRow, sums []BalanceRow) decimal.Decimal {
	return sumProfitAndLoss(accounts, indexBalances(sums)).netIncome()
}

// BuildProfitAndLoss groups revenue and expense accounts active in the
// period into sections by parent account.
func BuildProfitAndLoss(accounts []AccountRow, sums []BalanceRow, start, end time.Time) ProfitAndLoss {
	idx := indexBalances(sums)
	totals := sumProfitAndLoss(accounts, idx)

	grouped := make(map[byte][]AccountRow)
	for _, acc := range accounts {
		class := codeClass(acc.Code)
		if _, ok := plDefaultLabels[class]; !ok {
			continue
		}
		grouped[class] = append(grouped[class], acc)
	}

	return ProfitAndLoss{
		Start:                    start.Format(shared.DateLayout),
		End:                      end.Format(shared.DateLayout),
		RevenueSections:          buildSections(grouped[plRevenue], idx, plDefaultLabels[plRevenue]),
		TotalRevenue:             totals.revenue,
		CostSections:             buildSections(grouped[plCost], idx, plDefaultLabels[plCost]),
		TotalCost:                totals.cost,
		GrossProfit:              totals.grossProfit(),
		OperatingExpenseSections: buildSections(grouped[plOperating], idx, plDefaultLabels[plOperating]),
		TotalOperatingExpense:    totals.operating,
		OperatingIncome:          totals.operatingIncome(),
		OtherIncomeSections:      buildSections(grouped[plOtherIncome], idx, plDefaultLabels[plOtherIncome]),
		TotalOtherIncome:         totals.otherIncome,
		OtherExpenseSections:     buildSections(grouped[plOtherExpense], idx, plDefaultLabels[plOtherExpense]),
		TotalOtherExpense:        totals.otherExpense,
		NetIncome:                totals.netIncome(),
	}
}

// buildSections groups non-zero accounts by parent; accounts without a parent
// fall under defaultLabel. Sections are ordered by their lowest account code.
func buildSections(accounts []AccountRow, idx balanceIndex, defaultLabel string) []StatementSection {
	type bucket struct {
		section StatementSection
		minCode string
	}
	buckets := make(map[int64]*bucket)
	var order []int64
	for _, acc := range accounts {
		amount := idx.balance(acc)
		if amount.IsZero() {
			continue
		}
		var key int64
		label := defaultLabel
		if acc.ParentID != nil {
			key = *acc.ParentID
			if acc.ParentName != "" {
				label = acc.ParentName
			}
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{section: StatementSection{Label: label, Total: decimal.Zero}, minCode: acc.Code}
			if acc.ParentID != nil {
				parent := *acc.ParentID
				b.section.ParentID = &parent
			}
			buckets[key] = b
			order = append(order, key)
		}
		if acc.Code < b.minCode {
			b.minCode = acc.Code
		}
		b.section.Accounts = append(b.section.Accounts, StatementLine{
			AccountID: acc.ID,
			Code:      acc.Code,
			Name:      acc.Name,
			Amount:    amount,
		})
		b.section.Total = b.section.Total.Add(amount)
	}
	sort.SliceStable(order, func(i, j int) bool { return buckets[order[i]].minCode < buckets[order[j]].minCode })
	sections := make([]StatementSection, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		sort.SliceStable(b.section.Accounts, func(i, j int) bool { return b.section.Accounts[i].Code < b.section.Accounts[j].Code })
		sections = append(sections, b.section)
	}
	return sections
}
