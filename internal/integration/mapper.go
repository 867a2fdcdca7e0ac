package integration

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
)

// referenceNamespace scopes the deterministic reference ids of integration postings.
var referenceNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("erp-system/integration"))

// ReferenceID derives a stable reference id so that replayed events map to
// the same journal reference and are rejected as duplicates.
func ReferenceID(refType string, companyID, sourceID int64) string {
	return uuid.NewSHA1(referenceNamespace, []byte(fmt.Sprintf("%s:%d:%d", refType, companyID, sourceID))).String()
}

func debit(accountID int64, amount decimal.Decimal) accounting.PostingLineInput {
	return accounting.PostingLineInput{AccountID: accountID, Debit: amount, Credit: decimal.Zero}
}

func credit(accountID int64, amount decimal.Decimal) accounting.PostingLineInput {
	return accounting.PostingLineInput{AccountID: accountID, Debit: decimal.Zero, Credit: amount}
}

func round2(v decimal.Decimal) decimal.Decimal {
	return v.Round(2)
}
