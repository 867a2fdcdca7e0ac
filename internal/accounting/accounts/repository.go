package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MarselKurniawan/erp-system/internal/accounting/shared"
)

type Repository interface {
	List(ctx context.Context, companyID int64, filter ListFilter) ([]Account, error)
	Get(ctx context.Context, companyID, id int64) (Account, error)
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

const accountColumns = `id, company_id, code, name, type, COALESCE(subclass,''), parent_id, is_active, created_at, updated_at`

func scanAccount(row pgx.Row, a *Account) error {
	return row.Scan(&a.ID, &a.CompanyID, &a.Code, &a.Name, &a.Type, &a.Subclass, &a.ParentID, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
}

func (r *repository) List(ctx context.Context, companyID int64, filter ListFilter) ([]Account, error) {
	rows, err := r.db.Query(ctx, `SELECT `+accountColumns+` FROM accounts
WHERE company_id=$1 AND ($2 = '' OR type = $2) AND (NOT $3 OR is_active)
ORDER BY code`, companyID, string(filter.Type), filter.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var accounts []Account
	for rows.Next() {
		var a Account
		if err := scanAccount(rows, &a); err != nil {
			return nil, err
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

func (r *repository) Get(ctx context.Context, companyID, id int64) (Account, error) {
	var a Account
	err := scanAccount(r.db.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE company_id=$1 AND id=$2`, companyID, id), &a)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, fmt.Errorf("%w: id %d", shared.ErrAccountNotFound, id)
		}
		return Account{}, err
	}
	return a, nil
}
