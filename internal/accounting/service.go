package accounting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MarselKurniawan/erp-system/internal/accounting/shared"
	"github.com/MarselKurniawan/erp-system/internal/reportcache"
	base "github.com/MarselKurniawan/erp-system/internal/shared"
)

// RepositoryPort abstracts transactional repository behaviour.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Service coordinates posting and the draft lifecycle of journal entries.
type Service struct {
	repo   RepositoryPort
	cache  reportcache.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the ledger service. A nil cache disables invalidation.
func NewService(repo RepositoryPort, cache reportcache.Cache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, cache: cache, logger: logger, now: time.Now}
}

// WithNow overrides the clock for testing.
func (s *Service) WithNow(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// PostJournal validates and persists a new journal entry with its lines in
// one transaction. Nothing is written when validation fails.
func (s *Service) PostJournal(ctx context.Context, input PostingInput) (JournalEntry, error) {
	if err := input.Validate(); err != nil {
		return JournalEntry{}, err
	}
	input.Date = base.DateOnly(input.Date)
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		missing, err := tx.MissingAccounts(ctx, input.CompanyID, lineAccountIDs(input.Lines))
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %v", shared.ErrAccountNotFound, missing)
		}
		number, err := tx.NextEntryNumber(ctx, input.Date)
		if err != nil {
			return err
		}
		debit, credit := input.Totals()
		inserted, err := tx.InsertJournalEntry(ctx, NewEntry{
			Input:       input,
			Number:      number,
			Status:      input.status(),
			TotalDebit:  debit,
			TotalCredit: credit,
		})
		if err != nil {
			return err
		}
		lines, err := tx.InsertJournalLines(ctx, inserted.ID, input.Lines)
		if err != nil {
			return err
		}
		inserted.Lines = lines
		entry = inserted
		return nil
	})
	if err != nil {
		return JournalEntry{}, s.storageError(ctx, "post journal", err, slog.Int64("company_id", input.CompanyID))
	}
	if entry.Status == JournalStatusPosted {
		s.invalidate(ctx, entry.CompanyID, entry.ReferenceType)
	}
	return entry, nil
}

// GetJournal returns an entry with its lines.
func (s *Service) GetJournal(ctx context.Context, companyID, entryID int64) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		found, err := tx.GetJournalWithLines(ctx, companyID, entryID)
		if err != nil {
			return err
		}
		entry = found
		return nil
	})
	if err != nil {
		return JournalEntry{}, err
	}
	return entry, nil
}

// ListJournals returns entry headers matching filter, newest first.
func (s *Service) ListJournals(ctx context.Context, filter JournalFilter) ([]JournalEntry, error) {
	if filter.CompanyID <= 0 {
		return nil, fmt.Errorf("%w: company required", shared.ErrInvalidEntry)
	}
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 100
	}
	var entries []JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		found, err := tx.ListJournals(ctx, filter)
		if err != nil {
			return err
		}
		entries = found
		return nil
	})
	return entries, err
}

// PostDraft moves a DRAFT entry to POSTED.
func (s *Service) PostDraft(ctx context.Context, companyID, entryID int64) (JournalEntry, error) {
	var entry JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetJournalWithLines(ctx, companyID, entryID)
		if err != nil {
			return err
		}
		if current.Status != JournalStatusDraft {
			return fmt.Errorf("%w: entry %s is %s", shared.ErrInvalidStatus, current.Number, current.Status)
		}
		if err := tx.UpdateJournalStatus(ctx, companyID, entryID, JournalStatusPosted); err != nil {
			return err
		}
		current.Status = JournalStatusPosted
		current.UpdatedAt = s.now()
		entry = current
		return nil
	})
	if err != nil {
		return JournalEntry{}, s.storageError(ctx, "post draft", err, slog.Int64("entry_id", entryID))
	}
	s.invalidate(ctx, entry.CompanyID, entry.ReferenceType)
	return entry, nil
}

// DeleteJournal removes an entry and its lines.
func (s *Service) DeleteJournal(ctx context.Context, companyID, entryID int64) error {
	var removed JournalEntry
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetJournalWithLines(ctx, companyID, entryID)
		if err != nil {
			return err
		}
		if err := tx.DeleteJournal(ctx, companyID, entryID); err != nil {
			return err
		}
		removed = current
		return nil
	})
	if err != nil {
		return s.storageError(ctx, "delete journal", err, slog.Int64("entry_id", entryID))
	}
	if removed.Status == JournalStatusPosted {
		s.invalidate(ctx, removed.CompanyID, removed.ReferenceType)
	}
	return nil
}

// AffectedFamilies lists the report families a posting with referenceType touches.
func AffectedFamilies(referenceType string) []reportcache.Family {
	families := []reportcache.Family{reportcache.FamilyAccounting}
	ref := strings.ToLower(strings.TrimSpace(referenceType))
	switch {
	case strings.HasPrefix(ref, "sales"):
		families = append(families, reportcache.FamilySales)
	case strings.HasPrefix(ref, "purchase"), strings.HasPrefix(ref, "supplier"):
		families = append(families, reportcache.FamilyPurchasing)
	}
	return families
}

func (s *Service) invalidate(ctx context.Context, companyID int64, referenceType string) {
	families := AffectedFamilies(referenceType)
	if err := reportcache.InvalidateFamilies(ctx, s.cache, companyID, families...); err != nil {
		s.logger.Warn("report cache invalidation failed",
			slog.Int64("company_id", companyID),
			slog.Any("families", families),
			slog.Any("error", err))
	}
}

// storageError passes domain errors through and hides everything else behind
// ErrPostingFailed after logging the cause.
func (s *Service) storageError(ctx context.Context, op string, err error, attrs ...any) error {
	if errors.Is(err, base.ErrValidation) || errors.Is(err, base.ErrNotFound) || errors.Is(err, base.ErrConflict) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	s.logger.ErrorContext(ctx, "ledger "+op+" failed", append(attrs, slog.Any("error", err))...)
	return ErrPostingFailed
}

func lineAccountIDs(lines []PostingLineInput) []int64 {
	seen := make(map[int64]struct{}, len(lines))
	ids := make([]int64, 0, len(lines))
	for _, line := range lines {
		if _, ok := seen[line.AccountID]; ok {
			continue
		}
		seen[line.AccountID] = struct{}{}
		ids = append(ids, line.AccountID)
	}
	return ids
}
