package mappings

import "time"

// Modules used by integration hooks.
const (
	ModuleSales      = "SALES"
	ModulePurchasing = "PURCHASING"
)

// Keys resolved by integration hooks.
const (
	KeyReceivable = "ar"
	KeyRevenue    = "revenue"
	KeyVATOutput  = "vat_out"
	KeyCash       = "cash"
	KeyPayable    = "ap"
	KeyInventory  = "inventory"
	KeyExpense    = "expense"
	KeyVATInput   = "vat_in"
)

// AccountMapping links integration keys to ledger accounts.
type AccountMapping struct {
	CompanyID int64     `json:"companyId"`
	Module    string    `json:"module"`
	Key       string    `json:"key"`
	AccountID int64     `json:"accountId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
