package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads committed ledger and invoice data for aggregation.
type Repository interface {
	Accounts(ctx context.Context, companyID int64) ([]AccountRow, error)
	Balances(ctx context.Context, companyID int64, window Window) ([]BalanceRow, error)
	LedgerLines(ctx context.Context, companyID int64, window Window, accountIDs []int64) ([]LedgerRow, error)
	OpenInvoices(ctx context.Context, filter AgingFilter) ([]InvoiceRow, error)
	CompanyIDs(ctx context.Context) ([]int64, error)
}

// PgRepository implements Repository on PostgreSQL.
type PgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed Repository.
func NewRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

func (r *PgRepository) Accounts(ctx context.Context, companyID int64) ([]AccountRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT a.id, a.code, a.name, a.type, COALESCE(a.subclass,''), a.parent_id, COALESCE(p.name,''), a.is_active
FROM accounts a
LEFT JOIN accounts p ON p.id = a.parent_id
WHERE a.company_id=$1
ORDER BY a.code`, companyID)
	if err != nil {
		return nil, fmt.Errorf("reports: accounts: %w", err)
	}
	defer rows.Close()
	var out []AccountRow
	for rows.Next() {
		var a AccountRow
		if err := rows.Scan(&a.ID, &a.Code, &a.Name, &a.Type, &a.Subclass, &a.ParentID, &a.ParentName, &a.IsActive); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *PgRepository) Balances(ctx context.Context, companyID int64, window Window) ([]BalanceRow, error) {
	rows, err := r.pool.Query(ctx, `SELECT l.account_id, COALESCE(SUM(l.debit),0), COALESCE(SUM(l.credit),0)
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE e.company_id=$1 AND e.status='POSTED'
  AND ($2::date IS NULL OR e.date >= $2::date)
  AND ($3::date IS NULL OR e.date <= $3::date)
GROUP BY l.account_id`, companyID, nullDate(window.From), nullDate(window.To))
	if err != nil {
		return nil, fmt.Errorf("reports: balances: %w", err)
	}
	defer rows.Close()
	var out []BalanceRow
	for rows.Next() {
		var b BalanceRow
		if err := rows.Scan(&b.AccountID, &b.Debit, &b.Credit); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PgRepository) LedgerLines(ctx context.Context, companyID int64, window Window, accountIDs []int64) ([]LedgerRow, error) {
	var ids any
	if len(accountIDs) > 0 {
		ids = accountIDs
	}
	rows, err := r.pool.Query(ctx, `SELECT l.account_id, e.id, l.id, e.date, e.number, COALESCE(NULLIF(l.description,''), e.description),
  COALESCE(e.reference_type,''), COALESCE(e.reference_id,''), l.debit, l.credit
FROM journal_lines l
JOIN journal_entries e ON e.id = l.entry_id
WHERE e.company_id=$1 AND e.status='POSTED'
  AND ($2::date IS NULL OR e.date >= $2::date)
  AND ($3::date IS NULL OR e.date <= $3::date)
  AND ($4::bigint[] IS NULL OR l.account_id = ANY($4::bigint[]))
ORDER BY e.date, e.id, l.id`, companyID, nullDate(window.From), nullDate(window.To), ids)
	if err != nil {
		return nil, fmt.Errorf("reports: ledger lines: %w", err)
	}
	defer rows.Close()
	var out []LedgerRow
	for rows.Next() {
		var l LedgerRow
		if err := rows.Scan(&l.AccountID, &l.EntryID, &l.LineID, &l.Date, &l.Number, &l.Description,
			&l.ReferenceType, &l.ReferenceID, &l.Debit, &l.Credit); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const (
	openReceivablesQuery = `SELECT id, customer_id, customer_name, number, invoice_date, due_date, total, paid_amount
FROM sales_invoices
WHERE company_id=$1 AND invoice_date <= $2 AND total - paid_amount > 0
  AND status NOT IN ('DRAFT','VOID','CANCELLED')
  AND ($3::bigint = 0 OR customer_id = $3)
ORDER BY due_date, id`
	openPayablesQuery = `SELECT id, supplier_id, supplier_name, number, invoice_date, due_date, total, paid_amount
FROM purchase_invoices
WHERE company_id=$1 AND invoice_date <= $2 AND total - paid_amount > 0
  AND status NOT IN ('DRAFT','VOID','CANCELLED')
  AND ($3::bigint = 0 OR supplier_id = $3)
ORDER BY due_date, id`
)

func (r *PgRepository) OpenInvoices(ctx context.Context, filter AgingFilter) ([]InvoiceRow, error) {
	query := openReceivablesQuery
	if filter.Kind == AgingPayables {
		query = openPayablesQuery
	}
	rows, err := r.pool.Query(ctx, query, filter.CompanyID, filter.AsOf, filter.PartyID)
	if err != nil {
		return nil, fmt.Errorf("reports: open %s: %w", filter.Kind, err)
	}
	defer rows.Close()
	var out []InvoiceRow
	for rows.Next() {
		var inv InvoiceRow
		if err := rows.Scan(&inv.ID, &inv.PartyID, &inv.PartyName, &inv.Number, &inv.InvoiceDate, &inv.DueDate, &inv.Total, &inv.Paid); err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

// CompanyIDs lists every tenant that owns accounts.
func (r *PgRepository) CompanyIDs(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT company_id FROM accounts ORDER BY company_id`)
	if err != nil {
		return nil, fmt.Errorf("reports: companies: %w", err)
	}
	defer rows.Close()
	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
