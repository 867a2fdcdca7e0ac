package reports

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/MarselKurniawan/erp-system/internal/reportcache"
	"github.com/MarselKurniawan/erp-system/internal/shared"
)

func newReportRouter(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newFixtureService(t, reportcache.NewMemory())
	h := NewHandler(discardLogger(), svc)
	h.now = func() time.Time { return time.Date(2024, 1, 31, 15, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithCompany(req.Context(), company)))
		})
	})
	r.Route("/reports", h.MountRoutes)
	return r
}

func get(router http.Handler, target string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, target, nil))
	return rr
}

func TestHandlerTrialBalanceDefaultsToToday(t *testing.T) {
	rr := get(newReportRouter(t), "/reports/trial-balance")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var tb TrialBalance
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tb))
	require.Equal(t, "2024-01-31", tb.AsOf)
	require.True(t, tb.Balanced)
	requireAmount(t, "35400000", tb.TotalDebits)
}

func TestHandlerTrialBalanceCSV(t *testing.T) {
	rr := get(newReportRouter(t), "/reports/trial-balance/export.csv?as_of=2024-01-31")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/csv; charset=utf-8", rr.Header().Get("Content-Type"))
	require.Contains(t, rr.Header().Get("Content-Disposition"), "trial-balance-1-2024-01-31.csv")

	body := rr.Body.String()
	require.True(t, strings.HasPrefix(body, "# Report: Trial Balance\r\n"))
	require.Contains(t, body, "1101,Kas Besar,ASSET,3000000.00,0.00\r\n")
	require.Contains(t, body, ",Total,,35400000.00,35400000.00\r\n")
}

func TestHandlerGeneralLedgerDefaultsToMonthToDate(t *testing.T) {
	rr := get(newReportRouter(t), "/reports/general-ledger?account_id=1&account_id=2")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var gl GeneralLedger
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &gl))
	require.Equal(t, "2024-01-01", gl.Start)
	require.Equal(t, "2024-01-31", gl.End)
	require.Len(t, gl.Accounts, 2)
	requireAmount(t, "5000000", gl.Accounts[0].OpeningBalance)
	requireAmount(t, "3000000", gl.Accounts[0].ClosingBalance)
}

func TestHandlerGeneralLedgerCSV(t *testing.T) {
	rr := get(newReportRouter(t), "/reports/general-ledger/export.csv?account_id=1")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	require.Contains(t, body, "1101,Kas Besar,2024-01-01,,Opening balance,,,5000000.00\r\n")
	require.Contains(t, body, "Gaji Januari,0.00,2000000.00,3000000.00\r\n")
}

func TestHandlerProfitLossAndBalanceSheet(t *testing.T) {
	router := newReportRouter(t)
	rr := get(router, "/reports/profit-loss?start=2024-01-01&end=2024-01-31")
	require.Equal(t, http.StatusOK, rr.Code)
	var pl ProfitAndLoss
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pl))
	requireAmount(t, "1785000", pl.NetIncome)

	rr = get(router, "/reports/balance-sheet?as_of=2024-01-31")
	require.Equal(t, http.StatusOK, rr.Code)
	var bs BalanceSheet
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &bs))
	require.True(t, bs.Balanced)
}

func TestHandlerRejectsBadInput(t *testing.T) {
	router := newReportRouter(t)
	cases := []string{
		"/reports/trial-balance?as_of=31-01-2024",
		"/reports/aging/inventory",
		"/reports/general-ledger?account_id=abc",
		"/reports/aging/receivables?party_id=x",
	}
	for _, target := range cases {
		rr := get(router, target)
		require.Equal(t, http.StatusBadRequest, rr.Code, target)
		require.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"), target)
	}
}

func TestHandlerAgingAndCashBank(t *testing.T) {
	router := newReportRouter(t)
	rr := get(router, "/reports/aging/receivables?as_of=2024-06-30")
	require.Equal(t, http.StatusOK, rr.Code)
	var aging AgingReport
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &aging))
	require.Equal(t, AgingReceivables, aging.Kind)
	require.Empty(t, aging.Entries)

	rr = get(router, "/reports/cash-bank")
	require.Equal(t, http.StatusOK, rr.Code)
	var pos CashBankPosition
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &pos))
	requireAmount(t, "9035000", pos.GrandTotal)
}

func TestHandlerClearCache(t *testing.T) {
	router := newReportRouter(t)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/reports/cache", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)
}
