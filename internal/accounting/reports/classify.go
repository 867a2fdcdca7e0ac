package reports

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
)

// currentAssetCeiling separates current from fixed assets by the first four code digits.
const currentAssetCeiling = 1500

var (
	depreciationKeywords   = []string{"depresiasi", "akumulasi penyusutan", "accumulated depreciation"}
	longTermKeywords       = []string{"jangka panjang", "tidak lancar"}
	shortTermKeywords      = []string{"jangka pendek", "lancar"}
	openingBalanceKeywords = []string{"saldo awal", "opening balance"}
)

// Cash buckets in matching priority: the first bucket whose keyword occurs wins.
var cashRules = []struct {
	bucket   CashBucketName
	keywords []string
}{
	{CashBucketGiro, []string{"giro"}},
	{CashBucketBank, []string{"bank"}},
	{CashBucketKas, []string{"kas", "cash"}},
	{CashBucketOther, []string{"deposito"}},
}

// CashBucketName names a cash/bank bucket.
type CashBucketName string

const (
	CashBucketKas   CashBucketName = "KAS"
	CashBucketBank  CashBucketName = "BANK"
	CashBucketGiro  CashBucketName = "GIRO"
	CashBucketOther CashBucketName = "OTHER"
)

// cashBucketOrder is the presentation order of buckets.
var cashBucketOrder = []CashBucketName{CashBucketKas, CashBucketBank, CashBucketGiro, CashBucketOther}

type assetClass int

const (
	assetCurrent assetClass = iota
	assetFixed
	assetContra
)

type liabilityClass int

const (
	liabilityShortTerm liabilityClass = iota
	liabilityLongTerm
)

type equityClass int

const (
	equityCapital equityClass = iota
	equityOpeningBalance
)

// containsAny reports whether name contains one of keywords after Unicode case folding.
func containsAny(name string, keywords []string) bool {
	folded := cases.Fold().String(name)
	for _, kw := range keywords {
		if strings.Contains(folded, kw) {
			return true
		}
	}
	return false
}

func classifyAsset(acc AccountRow) assetClass {
	switch acc.Subclass {
	case accounting.SubclassCurrentAsset:
		return assetCurrent
	case accounting.SubclassFixedAsset:
		return assetFixed
	case accounting.SubclassContraAsset:
		return assetContra
	}
	if containsAny(acc.Name, depreciationKeywords) {
		return assetContra
	}
	if codePrefixValue(acc.Code) < currentAssetCeiling {
		return assetCurrent
	}
	return assetFixed
}

func classifyLiability(acc AccountRow) liabilityClass {
	switch acc.Subclass {
	case accounting.SubclassShortTermLiability:
		return liabilityShortTerm
	case accounting.SubclassLongTermLiability:
		return liabilityLongTerm
	}
	// "tidak lancar" contains "lancar", so long-term phrases are checked first.
	if containsAny(acc.Name, longTermKeywords) {
		return liabilityLongTerm
	}
	if containsAny(acc.Name, shortTermKeywords) {
		return liabilityShortTerm
	}
	return liabilityLongTerm
}

func classifyEquity(acc AccountRow) equityClass {
	switch acc.Subclass {
	case accounting.SubclassOpeningBalanceEquity:
		return equityOpeningBalance
	case accounting.SubclassCapital:
		return equityCapital
	}
	if containsAny(acc.Name, openingBalanceKeywords) {
		return equityOpeningBalance
	}
	return equityCapital
}

// classifyCash returns the bucket of a cash-like account, or false when the
// account is not cash-like.
func classifyCash(acc AccountRow) (CashBucketName, bool) {
	if !strings.HasPrefix(strings.TrimSpace(acc.Code), "1") {
		return "", false
	}
	for _, rule := range cashRules {
		if containsAny(acc.Name, rule.keywords) {
			return rule.bucket, true
		}
	}
	return "", false
}

// codePrefixValue reads the first four digits of a code, skipping separators
// and right padding with zeros, so "11" compares as 1100 and "1.2.01" as 1201.
func codePrefixValue(code string) int {
	var digits strings.Builder
	for _, r := range code {
		if r < '0' || r > '9' {
			continue
		}
		digits.WriteRune(r)
		if digits.Len() == 4 {
			break
		}
	}
	s := digits.String()
	if s == "" {
		return 0
	}
	for len(s) < 4 {
		s += "0"
	}
	v, _ := strconv.Atoi(s)
	return v
}

// codeClass returns the leading digit of a code, or 0.
func codeClass(code string) byte {
	code = strings.TrimSpace(code)
	if code == "" || code[0] < '0' || code[0] > '9' {
		return 0
	}
	return code[0] - '0'
}
