package accounting

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/platform/db"
)

const referenceConstraint = "uq_journal_entries_reference"

// Repository persists journal entries.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// NewEntry is the header row written by InsertJournalEntry.
type NewEntry struct {
	Input       PostingInput
	Number      string
	Status      JournalStatus
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
}

// TxRepository exposes transactional operations.
type TxRepository interface {
	MissingAccounts(ctx context.Context, companyID int64, ids []int64) ([]int64, error)
	NextEntryNumber(ctx context.Context, date time.Time) (string, error)
	InsertJournalEntry(ctx context.Context, in NewEntry) (JournalEntry, error)
	InsertJournalLines(ctx context.Context, entryID int64, lines []PostingLineInput) ([]JournalLine, error)
	GetJournalWithLines(ctx context.Context, companyID, entryID int64) (JournalEntry, error)
	ListJournals(ctx context.Context, filter JournalFilter) ([]JournalEntry, error)
	UpdateJournalStatus(ctx context.Context, companyID, entryID int64, status JournalStatus) error
	DeleteJournal(ctx context.Context, companyID, entryID int64) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes fn within repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return errors.New("accounting repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{tx: tx})
	})
}

func (r *txRepository) MissingAccounts(ctx context.Context, companyID int64, ids []int64) ([]int64, error) {
	rows, err := r.tx.Query(ctx, `SELECT id FROM accounts WHERE company_id=$1 AND id = ANY($2)`, companyID, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[int64]struct{}, len(ids))
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	var missing []int64
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *txRepository) NextEntryNumber(ctx context.Context, date time.Time) (string, error) {
	var seq int64
	if err := r.tx.QueryRow(ctx, `SELECT nextval('journal_entry_number_seq')`).Scan(&seq); err != nil {
		return "", err
	}
	return FormatEntryNumber(date, seq), nil
}

// FormatEntryNumber renders a journal number such as JE-202401-000042.
func FormatEntryNumber(date time.Time, seq int64) string {
	return fmt.Sprintf("JE-%s-%06d", date.Format("200601"), seq)
}

func (r *txRepository) InsertJournalEntry(ctx context.Context, in NewEntry) (JournalEntry, error) {
	entry := JournalEntry{
		CompanyID:     in.Input.CompanyID,
		Number:        in.Number,
		Date:          in.Input.Date,
		Description:   in.Input.Description,
		ReferenceType: in.Input.ReferenceType,
		ReferenceID:   in.Input.ReferenceID,
		TotalDebit:    in.TotalDebit,
		TotalCredit:   in.TotalCredit,
		Status:        in.Status,
	}
	err := r.tx.QueryRow(ctx, `INSERT INTO journal_entries (company_id, number, date, description, reference_type, reference_id, total_debit, total_credit, status)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9) RETURNING id, created_at, updated_at`,
		entry.CompanyID, entry.Number, entry.Date, entry.Description, nullString(entry.ReferenceType), nullString(entry.ReferenceID),
		entry.TotalDebit, entry.TotalCredit, entry.Status).
		Scan(&entry.ID, &entry.CreatedAt, &entry.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, referenceConstraint) {
			return JournalEntry{}, fmt.Errorf("%w: %s/%s", ErrReferenceConflict, entry.ReferenceType, entry.ReferenceID)
		}
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) InsertJournalLines(ctx context.Context, entryID int64, lines []PostingLineInput) ([]JournalLine, error) {
	out := make([]JournalLine, 0, len(lines))
	for _, line := range lines {
		inserted := JournalLine{
			EntryID:     entryID,
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
		}
		err := r.tx.QueryRow(ctx, `INSERT INTO journal_lines (entry_id, account_id, debit, credit, description)
VALUES ($1,$2,$3,$4,$5) RETURNING id`, entryID, line.AccountID, line.Debit, line.Credit, nullString(line.Description)).
			Scan(&inserted.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, inserted)
	}
	return out, nil
}

const entryColumns = `id, company_id, number, date, description, COALESCE(reference_type,''), COALESCE(reference_id,''),
total_debit, total_credit, status, created_at, updated_at`

func scanEntry(row pgx.Row, e *JournalEntry) error {
	return row.Scan(&e.ID, &e.CompanyID, &e.Number, &e.Date, &e.Description, &e.ReferenceType, &e.ReferenceID,
		&e.TotalDebit, &e.TotalCredit, &e.Status, &e.CreatedAt, &e.UpdatedAt)
}

func (r *txRepository) GetJournalWithLines(ctx context.Context, companyID, entryID int64) (JournalEntry, error) {
	var entry JournalEntry
	err := scanEntry(r.tx.QueryRow(ctx, `SELECT `+entryColumns+` FROM journal_entries WHERE company_id=$1 AND id=$2`, companyID, entryID), &entry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return JournalEntry{}, fmt.Errorf("%w: id %d", ErrJournalNotFound, entryID)
		}
		return JournalEntry{}, err
	}
	rows, err := r.tx.Query(ctx, `SELECT id, entry_id, account_id, debit, credit, COALESCE(description,'')
FROM journal_lines WHERE entry_id=$1 ORDER BY id ASC`, entryID)
	if err != nil {
		return JournalEntry{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line JournalLine
		if err := rows.Scan(&line.ID, &line.EntryID, &line.AccountID, &line.Debit, &line.Credit, &line.Description); err != nil {
			return JournalEntry{}, err
		}
		entry.Lines = append(entry.Lines, line)
	}
	if err := rows.Err(); err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

func (r *txRepository) ListJournals(ctx context.Context, filter JournalFilter) ([]JournalEntry, error) {
	var (
		conds = []string{"company_id=$1"}
		args  = []any{filter.CompanyID}
	)
	if !filter.From.IsZero() {
		args = append(args, filter.From)
		conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To)
		conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	args = append(args, filter.Limit)
	query := fmt.Sprintf(`SELECT %s FROM journal_entries WHERE %s ORDER BY date DESC, id DESC LIMIT $%d`,
		entryColumns, strings.Join(conds, " AND "), len(args))
	rows, err := r.tx.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var entries []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := scanEntry(rows, &e); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *txRepository) UpdateJournalStatus(ctx context.Context, companyID, entryID int64, status JournalStatus) error {
	cmd, err := r.tx.Exec(ctx, `UPDATE journal_entries SET status=$3, updated_at=NOW() WHERE company_id=$1 AND id=$2`, companyID, entryID, status)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrJournalNotFound, entryID)
	}
	return nil
}

func (r *txRepository) DeleteJournal(ctx context.Context, companyID, entryID int64) error {
	cmd, err := r.tx.Exec(ctx, `DELETE FROM journal_entries WHERE company_id=$1 AND id=$2`, companyID, entryID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: id %d", ErrJournalNotFound, entryID)
	}
	return nil
}

func nullString(val string) any {
	if val == "" {
		return nil
	}
	return val
}
