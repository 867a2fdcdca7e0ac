package accounts

import (
	"time"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
)

// Account models a chart of accounts node.
type Account struct {
	ID        int64                  `json:"id"`
	CompanyID int64                  `json:"companyId"`
	Code      string                 `json:"code"`
	Name      string                 `json:"name"`
	Type      accounting.AccountType `json:"type"`
	Subclass  accounting.Subclass    `json:"subclass,omitempty"`
	ParentID  *int64                 `json:"parentId,omitempty"`
	IsActive  bool                   `json:"isActive"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

// ListFilter narrows List.
type ListFilter struct {
	Type       accounting.AccountType
	ActiveOnly bool
}
