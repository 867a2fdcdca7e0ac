package accounts

import (
	"context"
	"fmt"
	"strings"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
	base "github.com/MarselKurniawan/erp-system/internal/shared"
)

// Service is the read-only chart of accounts registry.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, companyID int64, filter ListFilter) ([]Account, error) {
	if filter.Type != "" {
		filter.Type = accounting.AccountType(strings.ToUpper(string(filter.Type)))
		if !filter.Type.Valid() {
			return nil, fmt.Errorf("%w: unknown account type %q", base.ErrValidation, filter.Type)
		}
	}
	return s.repo.List(ctx, companyID, filter)
}

func (s *Service) Get(ctx context.Context, companyID, id int64) (Account, error) {
	return s.repo.Get(ctx, companyID, id)
}
