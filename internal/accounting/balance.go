package accounting

import "github.com/shopspring/decimal"

// Side is the ledger side that increases an account.
type Side string

const (
	SideDebit  Side = "DEBIT"
	SideCredit Side = "CREDIT"
)

// NormalBalance returns the side that increases accounts of type t.
// Unknown types are treated as debit-normal.
func NormalBalance(t AccountType) Side {
	switch t {
	case AccountTypeLiability, AccountTypeEquity, AccountTypeRevenue:
		return SideCredit
	default:
		return SideDebit
	}
}

// SignedBalance converts summed debits and credits into a balance expressed
// on the normal side of t. Every report derives balances through this function.
func SignedBalance(t AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if NormalBalance(t) == SideCredit {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}

// SplitBalance places a signed balance of type t into debit and credit columns,
// as a trial balance shows it. At most one of the results is non-zero; a zero
// balance yields two zeros.
func SplitBalance(t AccountType, balance decimal.Decimal) (debit, credit decimal.Decimal) {
	net := balance
	if NormalBalance(t) == SideCredit {
		net = balance.Neg()
	}
	if net.IsPositive() {
		return net, decimal.Zero
	}
	return decimal.Zero, net.Neg()
}
