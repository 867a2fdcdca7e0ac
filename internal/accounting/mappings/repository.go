package mappings

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MarselKurniawan/erp-system/internal/accounting/shared"
	"github.com/MarselKurniawan/erp-system/internal/platform/db"
	base "github.com/MarselKurniawan/erp-system/internal/shared"
)

type Repository interface {
	Get(ctx context.Context, companyID int64, module, key string) (AccountMapping, error)
	List(ctx context.Context, companyID int64) ([]AccountMapping, error)
	Upsert(ctx context.Context, mapping AccountMapping) (AccountMapping, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

// Get resolves an account mapping for the specified key.
func (r *repository) Get(ctx context.Context, companyID int64, module, key string) (AccountMapping, error) {
	if module == "" || key == "" {
		return AccountMapping{}, fmt.Errorf("%w: module and key required", base.ErrValidation)
	}
	normalized := strings.ToUpper(module)
	var mapping AccountMapping
	err := r.db.QueryRow(ctx, `SELECT company_id, module, key, account_id, created_at, updated_at FROM account_mappings
WHERE company_id=$1 AND module=$2 AND key=$3`, companyID, normalized, key).
		Scan(&mapping.CompanyID, &mapping.Module, &mapping.Key, &mapping.AccountID, &mapping.CreatedAt, &mapping.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AccountMapping{}, fmt.Errorf("%w: %s/%s", shared.ErrMappingNotFound, normalized, key)
		}
		return AccountMapping{}, err
	}
	return mapping, nil
}

func (r *repository) List(ctx context.Context, companyID int64) ([]AccountMapping, error) {
	rows, err := r.db.Query(ctx, `SELECT company_id, module, key, account_id, created_at, updated_at FROM account_mappings
WHERE company_id=$1 ORDER BY module, key`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []AccountMapping
	for rows.Next() {
		var m AccountMapping
		if err := rows.Scan(&m.CompanyID, &m.Module, &m.Key, &m.AccountID, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Upsert creates or repoints a mapping.
func (r *repository) Upsert(ctx context.Context, mapping AccountMapping) (AccountMapping, error) {
	mapping.Module = strings.ToUpper(mapping.Module)
	err := r.db.QueryRow(ctx, `INSERT INTO account_mappings (company_id, module, key, account_id)
VALUES ($1,$2,$3,$4)
ON CONFLICT (company_id, module, key) DO UPDATE SET account_id=EXCLUDED.account_id, updated_at=NOW()
RETURNING created_at, updated_at`, mapping.CompanyID, mapping.Module, mapping.Key, mapping.AccountID).
		Scan(&mapping.CreatedAt, &mapping.UpdatedAt)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return AccountMapping{}, fmt.Errorf("%w: id %d", shared.ErrAccountNotFound, mapping.AccountID)
		}
		return AccountMapping{}, err
	}
	return mapping, nil
}
