package accounting

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/MarselKurniawan/erp-system/internal/reportcache"
	base "github.com/MarselKurniawan/erp-system/internal/shared"
)

type spyCache struct {
	reportcache.Noop
	mu       sync.Mutex
	prefixes []string
	err      error
}

func (c *spyCache) Invalidate(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prefixes = append(c.prefixes, prefix)
	return c.err
}

func newTestService(t *testing.T) (*Service, *memRepo, *spyCache) {
	t.Helper()
	repo := newMemRepo()
	repo.addAccounts(1, 1101, 1201, 3100, 4100, 2100)
	repo.addAccounts(2, 9001)
	cache := &spyCache{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, cache, logger), repo, cache
}

func TestPostJournalPersistsEntryWithTotals(t *testing.T) {
	svc, repo, cache := newTestService(t)
	in := validInput()
	in.Date = time.Date(2024, 1, 10, 15, 30, 0, 0, time.UTC)

	entry, err := svc.PostJournal(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "JE-202401-000001", entry.Number)
	require.Equal(t, JournalStatusPosted, entry.Status)
	require.True(t, dec("1000").Equal(entry.TotalDebit))
	require.True(t, dec("1000").Equal(entry.TotalCredit))
	require.Equal(t, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC), entry.Date)
	require.Len(t, entry.Lines, 2)
	require.Equal(t, 1, repo.count())
	require.Equal(t, []string{reportcache.FamilyPrefix(reportcache.FamilyAccounting, 1)}, cache.prefixes)

	got, err := svc.GetJournal(context.Background(), 1, entry.ID)
	require.NoError(t, err)
	require.Equal(t, entry.Number, got.Number)
	require.Len(t, got.Lines, 2)
}

func TestPostJournalUnbalancedWritesNothing(t *testing.T) {
	svc, repo, cache := newTestService(t)
	in := validInput()
	in.Lines[1].Credit = dec("999.98")

	_, err := svc.PostJournal(context.Background(), in)
	require.ErrorIs(t, err, ErrUnbalanced)
	require.Equal(t, 0, repo.count())
	require.Empty(t, cache.prefixes)
}

func TestPostJournalUnknownAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	in := validInput()
	in.Lines[1].AccountID = 9001 // belongs to company 2

	_, err := svc.PostJournal(context.Background(), in)
	require.ErrorIs(t, err, ErrAccountNotFound)
	require.ErrorIs(t, err, base.ErrNotFound)
	require.Equal(t, 0, repo.count())
}

func TestPostJournalRollsBackOnStorageFailure(t *testing.T) {
	svc, repo, cache := newTestService(t)
	repo.failLines = errStorage

	_, err := svc.PostJournal(context.Background(), validInput())
	require.ErrorIs(t, err, ErrPostingFailed)
	require.False(t, errors.Is(err, errStorage))
	require.Equal(t, 0, repo.count())
	require.Empty(t, cache.prefixes)

	repo.failLines = nil
	entry, err := svc.PostJournal(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, "JE-202401-000001", entry.Number)
}

func TestPostJournalReferenceConflict(t *testing.T) {
	svc, repo, _ := newTestService(t)
	in := validInput()
	in.ReferenceType = "sales_invoice"
	in.ReferenceID = "INV-001"

	_, err := svc.PostJournal(context.Background(), in)
	require.NoError(t, err)
	_, err = svc.PostJournal(context.Background(), in)
	require.ErrorIs(t, err, ErrReferenceConflict)
	require.ErrorIs(t, err, base.ErrConflict)
	require.Equal(t, 1, repo.count())
}

func TestPostJournalInvalidatesByReferenceType(t *testing.T) {
	cases := map[string][]reportcache.Family{
		"":                 {reportcache.FamilyAccounting},
		"sales_invoice":    {reportcache.FamilyAccounting, reportcache.FamilySales},
		"Sales_Payment":    {reportcache.FamilyAccounting, reportcache.FamilySales},
		"purchase_invoice": {reportcache.FamilyAccounting, reportcache.FamilyPurchasing},
		"supplier_payment": {reportcache.FamilyAccounting, reportcache.FamilyPurchasing},
		"manual":           {reportcache.FamilyAccounting},
	}
	for ref, families := range cases {
		t.Run(ref, func(t *testing.T) {
			svc, _, cache := newTestService(t)
			in := validInput()
			if ref != "" {
				in.ReferenceType, in.ReferenceID = ref, "REF-1"
			}
			_, err := svc.PostJournal(context.Background(), in)
			require.NoError(t, err)
			want := make([]string, 0, len(families))
			for _, f := range families {
				want = append(want, reportcache.FamilyPrefix(f, 1))
			}
			require.Equal(t, want, cache.prefixes)
		})
	}
}

func TestPostJournalSucceedsWhenInvalidationFails(t *testing.T) {
	svc, repo, cache := newTestService(t)
	cache.err = errors.New("redis unavailable")

	_, err := svc.PostJournal(context.Background(), validInput())
	require.NoError(t, err)
	require.Equal(t, 1, repo.count())
}

func TestDraftLifecycle(t *testing.T) {
	svc, _, cache := newTestService(t)
	in := validInput()
	in.Status = JournalStatusDraft

	draft, err := svc.PostJournal(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, JournalStatusDraft, draft.Status)
	require.Empty(t, cache.prefixes)

	posted, err := svc.PostDraft(context.Background(), 1, draft.ID)
	require.NoError(t, err)
	require.Equal(t, JournalStatusPosted, posted.Status)
	require.Len(t, cache.prefixes, 1)

	_, err = svc.PostDraft(context.Background(), 1, draft.ID)
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeleteJournal(t *testing.T) {
	svc, repo, cache := newTestService(t)
	entry, err := svc.PostJournal(context.Background(), validInput())
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteJournal(context.Background(), 2, entry.ID), ErrJournalNotFound)
	require.NoError(t, svc.DeleteJournal(context.Background(), 1, entry.ID))
	require.Equal(t, 0, repo.count())
	require.Len(t, cache.prefixes, 2)

	_, err = svc.GetJournal(context.Background(), 1, entry.ID)
	require.ErrorIs(t, err, base.ErrNotFound)
}

func TestListJournalsFiltersByStatus(t *testing.T) {
	svc, _, _ := newTestService(t)
	draft := validInput()
	draft.Status = JournalStatusDraft
	_, err := svc.PostJournal(context.Background(), draft)
	require.NoError(t, err)
	_, err = svc.PostJournal(context.Background(), validInput())
	require.NoError(t, err)

	all, err := svc.ListJournals(context.Background(), JournalFilter{CompanyID: 1})
	require.NoError(t, err)
	require.Len(t, all, 2)

	posted, err := svc.ListJournals(context.Background(), JournalFilter{CompanyID: 1, Status: JournalStatusPosted})
	require.NoError(t, err)
	require.Len(t, posted, 1)

	_, err = svc.ListJournals(context.Background(), JournalFilter{})
	require.ErrorIs(t, err, base.ErrValidation)
}

func TestAffectedFamiliesAlwaysIncludesAccounting(t *testing.T) {
	require.Equal(t, reportcache.FamilyAccounting, AffectedFamilies("anything")[0])
}
