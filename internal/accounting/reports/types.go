package reports

import (
	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
)

// StatementLine is one account shown inside a statement section.
type StatementLine struct {
	AccountID int64           `json:"accountId"`
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Amount    decimal.Decimal `json:"amount"`
}

// StatementSection groups statement lines under a label with a subtotal.
type StatementSection struct {
	ParentID *int64          `json:"parentId,omitempty"`
	Label    string          `json:"label"`
	Accounts []StatementLine `json:"accounts"`
	Total    decimal.Decimal `json:"total"`
}

// TrialBalanceEntry is one non-zero account balance placed in its column.
type TrialBalanceEntry struct {
	AccountID     int64                  `json:"accountId"`
	Code          string                 `json:"code"`
	Name          string                 `json:"name"`
	Type          accounting.AccountType `json:"type"`
	DebitBalance  decimal.Decimal        `json:"debitBalance"`
	CreditBalance decimal.Decimal        `json:"creditBalance"`
}

// TrialBalance lists account balances as of a date.
type TrialBalance struct {
	AsOf         string              `json:"asOf"`
	Entries      []TrialBalanceEntry `json:"entries"`
	TotalDebits  decimal.Decimal     `json:"totalDebits"`
	TotalCredits decimal.Decimal     `json:"totalCredits"`
	Balanced     bool                `json:"balanced"`
}

// LedgerEntry is one posted line with the balance after applying it.
type LedgerEntry struct {
	Date           string          `json:"date"`
	EntryID        int64           `json:"entryId"`
	Number         string          `json:"number"`
	Description    string          `json:"description"`
	ReferenceType  string          `json:"referenceType,omitempty"`
	ReferenceID    string          `json:"referenceId,omitempty"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountLedger is the general ledger of one account.
type AccountLedger struct {
	AccountID      int64                  `json:"accountId"`
	Code           string                 `json:"code"`
	Name           string                 `json:"name"`
	Type           accounting.AccountType `json:"type"`
	OpeningBalance decimal.Decimal        `json:"openingBalance"`
	Entries        []LedgerEntry          `json:"entries"`
	PeriodDebit    decimal.Decimal        `json:"periodDebit"`
	PeriodCredit   decimal.Decimal        `json:"periodCredit"`
	ClosingBalance decimal.Decimal        `json:"closingBalance"`
}

// GeneralLedger is the ledger of every selected account for a period.
type GeneralLedger struct {
	Start    string          `json:"start"`
	End      string          `json:"end"`
	Accounts []AccountLedger `json:"accounts"`
}

// ProfitAndLoss is the income statement for a period.
type ProfitAndLoss struct {
	Start                    string             `json:"start"`
	End                      string             `json:"end"`
	RevenueSections          []StatementSection `json:"revenueSections"`
	TotalRevenue             decimal.Decimal    `json:"totalRevenue"`
	CostSections             []StatementSection `json:"costSections"`
	TotalCost                decimal.Decimal    `json:"totalCost"`
	GrossProfit              decimal.Decimal    `json:"grossProfit"`
	OperatingExpenseSections []StatementSection `json:"operatingExpenseSections"`
	TotalOperatingExpense    decimal.Decimal    `json:"totalOperatingExpense"`
	OperatingIncome          decimal.Decimal    `json:"operatingIncome"`
	OtherIncomeSections      []StatementSection `json:"otherIncomeSections"`
	TotalOtherIncome         decimal.Decimal    `json:"totalOtherIncome"`
	OtherExpenseSections     []StatementSection `json:"otherExpenseSections"`
	TotalOtherExpense        decimal.Decimal    `json:"totalOtherExpense"`
	NetIncome                decimal.Decimal    `json:"netIncome"`
}

// AssetTotals summarises the asset side. Depreciation is a positive magnitude.
type AssetTotals struct {
	Current      decimal.Decimal `json:"current"`
	Fixed        decimal.Decimal `json:"fixed"`
	Depreciation decimal.Decimal `json:"depreciation"`
	NetFixed     decimal.Decimal `json:"netFixed"`
	Total        decimal.Decimal `json:"total"`
}

// AssetSection lists asset accounts by class.
type AssetSection struct {
	Current      []StatementLine `json:"current"`
	Fixed        []StatementLine `json:"fixed"`
	Depreciation []StatementLine `json:"depreciation"`
	Totals       AssetTotals     `json:"totals"`
}

// LiabilitySection lists liability accounts by term.
type LiabilitySection struct {
	ShortTerm      []StatementLine `json:"shortTerm"`
	LongTerm       []StatementLine `json:"longTerm"`
	TotalShortTerm decimal.Decimal `json:"totalShortTerm"`
	TotalLongTerm  decimal.Decimal `json:"totalLongTerm"`
	Total          decimal.Decimal `json:"total"`
}

// EquitySection lists equity accounts plus earnings not yet closed to equity.
type EquitySection struct {
	Capital             []StatementLine `json:"capital"`
	OpeningBalance      []StatementLine `json:"openingBalance"`
	CurrentYearEarnings decimal.Decimal `json:"currentYearEarnings"`
	PriorYearEarnings   decimal.Decimal `json:"priorYearEarnings"`
	Total               decimal.Decimal `json:"total"`
}

// BalanceSheet is the statement of financial position as of a date.
type BalanceSheet struct {
	AsOf                      string           `json:"asOf"`
	FiscalYearStart           string           `json:"fiscalYearStart"`
	Assets                    AssetSection     `json:"assets"`
	Liabilities               LiabilitySection `json:"liabilities"`
	Equity                    EquitySection    `json:"equity"`
	TotalLiabilitiesAndEquity decimal.Decimal  `json:"totalLiabilitiesAndEquity"`
	Balanced                  bool             `json:"balanced"`
}

// CashBucket groups cash-like accounts.
type CashBucket struct {
	Name     CashBucketName  `json:"name"`
	Accounts []StatementLine `json:"accounts"`
	Total    decimal.Decimal `json:"total"`
}

// CashBankPosition reports cash and bank balances as of a date.
type CashBankPosition struct {
	AsOf       string          `json:"asOf"`
	Buckets    []CashBucket    `json:"buckets"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// AgingEntry is one unpaid invoice placed in its bucket.
type AgingEntry struct {
	InvoiceID     int64           `json:"invoiceId"`
	PartyID       int64           `json:"partyId"`
	PartyName     string          `json:"partyName"`
	InvoiceNumber string          `json:"invoiceNumber"`
	InvoiceDate   string          `json:"invoiceDate"`
	DueDate       string          `json:"dueDate"`
	Total         decimal.Decimal `json:"total"`
	Paid          decimal.Decimal `json:"paid"`
	BalanceDue    decimal.Decimal `json:"balanceDue"`
	DaysOverdue   int             `json:"daysOverdue"`
	Bucket        AgingBucket     `json:"bucket"`
}

// AgingSummary totals balance due per bucket.
type AgingSummary struct {
	Current    decimal.Decimal `json:"current"`
	Days1To30  decimal.Decimal `json:"days1_30"`
	Days31To60 decimal.Decimal `json:"days31_60"`
	Days61To90 decimal.Decimal `json:"days61_90"`
	Over90     decimal.Decimal `json:"over90"`
	GrandTotal decimal.Decimal `json:"grandTotal"`
}

// AgingReport is the receivables or payables aging as of a date.
type AgingReport struct {
	Kind    AgingKind    `json:"kind"`
	AsOf    string       `json:"asOf"`
	Entries []AgingEntry `json:"entries"`
	Summary AgingSummary `json:"summary"`
}
