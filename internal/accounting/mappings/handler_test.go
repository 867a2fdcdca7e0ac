package mappings

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/MarselKurniawan/erp-system/internal/accounting/shared"
	base "github.com/MarselKurniawan/erp-system/internal/shared"
)

type memoryRepo struct {
	items map[string]AccountMapping
}

func (m *memoryRepo) id(companyID int64, module, key string) string {
	return fmt.Sprintf("%d/%s/%s", companyID, module, key)
}

func (m *memoryRepo) Get(_ context.Context, companyID int64, module, key string) (AccountMapping, error) {
	item, ok := m.items[m.id(companyID, strings.ToUpper(module), key)]
	if !ok {
		return AccountMapping{}, shared.ErrMappingNotFound
	}
	return item, nil
}

func (m *memoryRepo) List(_ context.Context, companyID int64) ([]AccountMapping, error) {
	var out []AccountMapping
	for _, item := range m.items {
		if item.CompanyID == companyID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memoryRepo) Upsert(_ context.Context, mapping AccountMapping) (AccountMapping, error) {
	if mapping.AccountID == 404 {
		return AccountMapping{}, shared.ErrAccountNotFound
	}
	m.items[m.id(mapping.CompanyID, mapping.Module, mapping.Key)] = mapping
	return mapping, nil
}

func newRouter(repo Repository, companyID int64) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(base.ContextWithCompany(req.Context(), companyID)))
		})
	})
	NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), repo).MountRoutes(r)
	return r
}

func TestUpsertNormalisesAndScopesByCompany(t *testing.T) {
	repo := &memoryRepo{items: map[string]AccountMapping{}}
	router := newRouter(repo, 5)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/sales/AR", strings.NewReader(`{"accountId":12}`)))
	require.Equal(t, http.StatusOK, rec.Code)

	got, err := repo.Get(context.Background(), 5, ModuleSales, KeyReceivable)
	require.NoError(t, err)
	require.EqualValues(t, 12, got.AccountID)

	_, err = repo.Get(context.Background(), 6, ModuleSales, KeyReceivable)
	require.ErrorIs(t, err, base.ErrNotFound)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"accountId":12`)
}

func TestUpsertRejectsUnknownKeysAndAccounts(t *testing.T) {
	router := newRouter(&memoryRepo{items: map[string]AccountMapping{}}, 5)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/sales/discount", strings.NewReader(`{"accountId":12}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/purchasing/ap", strings.NewReader(`{"accountId":0}`)))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/purchasing/ap", strings.NewReader(`{"accountId":404}`)))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
