package accounting

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/accounting/shared"
)

// BalanceTolerance is the largest debit/credit difference an entry may carry.
var BalanceTolerance = decimal.New(1, -2)

// AccountType enumerates CoA categories.
type AccountType string

const (
	AccountTypeAsset     AccountType = "ASSET"
	AccountTypeLiability AccountType = "LIABILITY"
	AccountTypeEquity    AccountType = "EQUITY"
	AccountTypeRevenue   AccountType = "REVENUE"
	AccountTypeExpense   AccountType = "EXPENSE"
)

// Valid reports whether t is one of the five account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue, AccountTypeExpense:
		return true
	}
	return false
}

// TypeFromCode derives the account type from the leading digit of a code:
// 1 asset, 2 liability, 3 equity, 4 and 7 revenue, 5, 6 and 8 expense.
func TypeFromCode(code string) (AccountType, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", false
	}
	switch code[0] {
	case '1':
		return AccountTypeAsset, true
	case '2':
		return AccountTypeLiability, true
	case '3':
		return AccountTypeEquity, true
	case '4', '7':
		return AccountTypeRevenue, true
	case '5', '6', '8':
		return AccountTypeExpense, true
	}
	return "", false
}

// Subclass is the structural sub-classification used by the balance sheet.
type Subclass string

const (
	SubclassNone                 Subclass = ""
	SubclassCurrentAsset         Subclass = "CURRENT_ASSET"
	SubclassFixedAsset           Subclass = "FIXED_ASSET"
	SubclassContraAsset          Subclass = "CONTRA_ASSET"
	SubclassShortTermLiability   Subclass = "SHORT_TERM_LIABILITY"
	SubclassLongTermLiability    Subclass = "LONG_TERM_LIABILITY"
	SubclassCapital              Subclass = "CAPITAL"
	SubclassOpeningBalanceEquity Subclass = "OPENING_BALANCE_EQUITY"
)

// JournalStatus enumerates journal lifecycle values.
type JournalStatus string

const (
	JournalStatusDraft  JournalStatus = "DRAFT"
	JournalStatusPosted JournalStatus = "POSTED"
)

// JournalEntry captures posting metadata.
type JournalEntry struct {
	ID            int64           `json:"id"`
	CompanyID     int64           `json:"companyId"`
	Number        string          `json:"number"`
	Date          time.Time       `json:"date"`
	Description   string          `json:"description"`
	ReferenceType string          `json:"referenceType,omitempty"`
	ReferenceID   string          `json:"referenceId,omitempty"`
	TotalDebit    decimal.Decimal `json:"totalDebit"`
	TotalCredit   decimal.Decimal `json:"totalCredit"`
	Status        JournalStatus   `json:"status"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
	Lines         []JournalLine   `json:"lines,omitempty"`
}

// JournalLine stores debit or credit amount for an account.
type JournalLine struct {
	ID          int64           `json:"id"`
	EntryID     int64           `json:"entryId"`
	AccountID   int64           `json:"accountId"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Description string          `json:"description,omitempty"`
}

// PostingLineInput describes a journal line for posting request.
type PostingLineInput struct {
	AccountID   int64
	Debit       decimal.Decimal
	Credit      decimal.Decimal
	Description string
}

// PostingInput groups fields required to create a journal entry.
type PostingInput struct {
	CompanyID     int64
	Date          time.Time
	Description   string
	ReferenceType string
	ReferenceID   string
	// Status defaults to POSTED when empty.
	Status JournalStatus
	Lines  []PostingLineInput
}

// JournalFilter narrows ListJournals.
type JournalFilter struct {
	CompanyID int64
	From      time.Time
	To        time.Time
	Status    JournalStatus
	Limit     int
}

// Totals sums the debit and credit sides of all lines.
func (in PostingInput) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, line := range in.Lines {
		debit = debit.Add(line.Debit)
		credit = credit.Add(line.Credit)
	}
	return debit, credit
}

// AmountScale is the number of decimal places stored for line amounts.
const AmountScale = 2

// isCents reports whether d fits the stored amount scale without rounding.
func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(AmountScale))
}

// Validate ensures posting input meets minimum criteria.
// A line may carry both a debit and a credit; only an all-zero line is rejected.
func (in PostingInput) Validate() error {
	if in.CompanyID <= 0 {
		return fmt.Errorf("%w: company required", shared.ErrInvalidEntry)
	}
	if in.Date.IsZero() {
		return fmt.Errorf("%w: date required", shared.ErrInvalidEntry)
	}
	switch in.Status {
	case "", JournalStatusDraft, JournalStatusPosted:
	default:
		return fmt.Errorf("%w: unknown status %q", shared.ErrInvalidEntry, in.Status)
	}
	if (in.ReferenceType == "") != (in.ReferenceID == "") {
		return fmt.Errorf("%w: reference type and id must be provided together", shared.ErrInvalidEntry)
	}
	if len(in.Lines) == 0 {
		return shared.ErrNoLines
	}
	for idx, line := range in.Lines {
		if line.AccountID <= 0 {
			return fmt.Errorf("%w: line %d missing account", shared.ErrInvalidLine, idx)
		}
		if line.Debit.IsNegative() || line.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d negative amount", shared.ErrInvalidLine, idx)
		}
		if line.Debit.IsZero() && line.Credit.IsZero() {
			return fmt.Errorf("%w: line %d has no amount", shared.ErrInvalidLine, idx)
		}
		if !isCents(line.Debit) || !isCents(line.Credit) {
			return fmt.Errorf("%w: line %d amount has more than %d decimal places", shared.ErrInvalidLine, idx, AmountScale)
		}
	}
	debit, credit := in.Totals()
	if diff := debit.Sub(credit).Abs(); diff.GreaterThan(BalanceTolerance) {
		return fmt.Errorf("%w: debit %s, credit %s, difference %s", shared.ErrUnbalanced,
			debit.StringFixed(2), credit.StringFixed(2), diff.String())
	}
	return nil
}

func (in PostingInput) status() JournalStatus {
	if in.Status == "" {
		return JournalStatusPosted
	}
	return in.Status
}

// Re-exported so callers need not import the shared subpackage.
var (
	ErrUnbalanced        = shared.ErrUnbalanced
	ErrNoLines           = shared.ErrNoLines
	ErrInvalidLine       = shared.ErrInvalidLine
	ErrInvalidEntry      = shared.ErrInvalidEntry
	ErrInvalidStatus     = shared.ErrInvalidStatus
	ErrJournalNotFound   = shared.ErrJournalNotFound
	ErrAccountNotFound   = shared.ErrAccountNotFound
	ErrMappingNotFound   = shared.ErrMappingNotFound
	ErrReferenceConflict = shared.ErrReferenceConflict
	ErrPostingFailed     = shared.ErrPostingFailed
)
