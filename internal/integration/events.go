package integration

import (
	"time"

	"github.com/shopspring/decimal"
)

// Reference types written on integration postings.
const (
	RefSalesInvoice    = "sales_invoice"
	RefSalesPayment    = "sales_payment"
	RefPurchaseInvoice = "purchase_invoice"
	RefSupplierPayment = "supplier_payment"
)

// SalesInvoiceIssued is raised when a customer invoice is issued.
type SalesInvoiceIssued struct {
	CompanyID int64
	InvoiceID int64
	Number    string
	Date      time.Time
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
}

// CustomerPaymentReceived is raised when cash is received against receivables.
type CustomerPaymentReceived struct {
	CompanyID int64
	PaymentID int64
	Number    string
	Date      time.Time
	Amount    decimal.Decimal
}

// PurchaseInvoiceReceived is raised when a supplier invoice is recorded.
type PurchaseInvoiceReceived struct {
	CompanyID int64
	InvoiceID int64
	Number    string
	Date      time.Time
	Subtotal  decimal.Decimal
	Tax       decimal.Decimal
	// Inventory debits the inventory account instead of expense.
	Inventory bool
}

// SupplierPaymentMade is raised when a supplier is paid.
type SupplierPaymentMade struct {
	CompanyID int64
	PaymentID int64
	Number    string
	Date      time.Time
	Amount    decimal.Decimal
}
