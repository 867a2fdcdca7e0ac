package accounting

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// memRepo is a transactional in-memory RepositoryPort. Each WithTx works on a
// copy of the state that is swapped in only when fn succeeds.
type memRepo struct {
	mu       sync.Mutex
	accounts map[int64]int64 // account id -> company id
	entries  map[int64]JournalEntry
	seq      int64
	lineSeq  int64
	// failLines makes InsertJournalLines fail after inserting the header.
	failLines error
}

func newMemRepo() *memRepo {
	return &memRepo{accounts: map[int64]int64{}, entries: map[int64]JournalEntry{}}
}

func (r *memRepo) addAccounts(companyID int64, ids ...int64) {
	for _, id := range ids {
		r.accounts[id] = companyID
	}
}

func (r *memRepo) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tx := &memTx{repo: r, entries: make(map[int64]JournalEntry, len(r.entries)), seq: r.seq, lineSeq: r.lineSeq}
	for id, e := range r.entries {
		tx.entries[id] = e
	}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	r.entries = tx.entries
	r.seq = tx.seq
	r.lineSeq = tx.lineSeq
	return nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

type memTx struct {
	repo    *memRepo
	entries map[int64]JournalEntry
	seq     int64
	lineSeq int64
}

func (tx *memTx) MissingAccounts(_ context.Context, companyID int64, ids []int64) ([]int64, error) {
	var missing []int64
	for _, id := range ids {
		if owner, ok := tx.repo.accounts[id]; !ok || owner != companyID {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (tx *memTx) NextEntryNumber(_ context.Context, date time.Time) (string, error) {
	tx.seq++
	return FormatEntryNumber(date, tx.seq), nil
}

func (tx *memTx) InsertJournalEntry(_ context.Context, in NewEntry) (JournalEntry, error) {
	if in.Input.ReferenceType != "" {
		for _, e := range tx.entries {
			if e.CompanyID == in.Input.CompanyID && e.ReferenceType == in.Input.ReferenceType && e.ReferenceID == in.Input.ReferenceID {
				return JournalEntry{}, ErrReferenceConflict
			}
		}
	}
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	entry := JournalEntry{
		ID:            tx.seq,
		CompanyID:     in.Input.CompanyID,
		Number:        in.Number,
		Date:          in.Input.Date,
		Description:   in.Input.Description,
		ReferenceType: in.Input.ReferenceType,
		ReferenceID:   in.Input.ReferenceID,
		TotalDebit:    in.TotalDebit,
		TotalCredit:   in.TotalCredit,
		Status:        in.Status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	tx.entries[entry.ID] = entry
	return entry, nil
}

func (tx *memTx) InsertJournalLines(_ context.Context, entryID int64, lines []PostingLineInput) ([]JournalLine, error) {
	if tx.repo.failLines != nil {
		return nil, tx.repo.failLines
	}
	entry := tx.entries[entryID]
	out := make([]JournalLine, 0, len(lines))
	for _, line := range lines {
		tx.lineSeq++
		out = append(out, JournalLine{
			ID:          tx.lineSeq,
			EntryID:     entryID,
			AccountID:   line.AccountID,
			Debit:       line.Debit,
			Credit:      line.Credit,
			Description: line.Description,
		})
	}
	entry.Lines = out
	tx.entries[entryID] = entry
	return out, nil
}

func (tx *memTx) GetJournalWithLines(_ context.Context, companyID, entryID int64) (JournalEntry, error) {
	entry, ok := tx.entries[entryID]
	if !ok || entry.CompanyID != companyID {
		return JournalEntry{}, ErrJournalNotFound
	}
	return entry, nil
}

func (tx *memTx) ListJournals(_ context.Context, filter JournalFilter) ([]JournalEntry, error) {
	var out []JournalEntry
	for _, e := range tx.entries {
		if e.CompanyID != filter.CompanyID {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		if !filter.From.IsZero() && e.Date.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && e.Date.After(filter.To) {
			continue
		}
		e.Lines = nil
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (tx *memTx) UpdateJournalStatus(_ context.Context, companyID, entryID int64, status JournalStatus) error {
	entry, ok := tx.entries[entryID]
	if !ok || entry.CompanyID != companyID {
		return ErrJournalNotFound
	}
	entry.Status = status
	tx.entries[entryID] = entry
	return nil
}

func (tx *memTx) DeleteJournal(_ context.Context, companyID, entryID int64) error {
	entry, ok := tx.entries[entryID]
	if !ok || entry.CompanyID != companyID {
		return ErrJournalNotFound
	}
	delete(tx.entries, entryID)
	return nil
}

var errStorage = errors.New("connection reset by peer")

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
