package reports

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MarselKurniawan/erp-system/internal/platform/httpx"
)

// Handler exposes financial statements over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	now     func() time.Time
}

// NewHandler builds a report handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger, service: service, now: time.Now}
}

// MountRoutes registers report routes relative to the mount point.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/trial-balance", h.trialBalance)
	r.Get("/trial-balance/export.csv", h.trialBalanceCSV)
	r.Get("/general-ledger", h.generalLedger)
	r.Get("/general-ledger/export.csv", h.generalLedgerCSV)
	r.Get("/profit-loss", h.profitLoss)
	r.Get("/balance-sheet", h.balanceSheet)
	r.Get("/cash-bank", h.cashBank)
	r.Get("/aging/{kind}", h.aging)
	r.Delete("/cache", h.clearCache)
}

func (h *Handler) today() time.Time {
	now := h.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (h *Handler) asOf(r *http.Request) (int64, time.Time, error) {
	companyID, err := httpx.CompanyID(r)
	if err != nil {
		return 0, time.Time{}, err
	}
	asOf, err := httpx.QueryDate(r, "as_of", h.today())
	return companyID, asOf, err
}

// period reads start and end, defaulting to the current month to date.
func (h *Handler) period(r *http.Request) (time.Time, time.Time, error) {
	today := h.today()
	start, err := httpx.QueryDate(r, "start", time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := httpx.QueryDate(r, "end", today)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func (h *Handler) trialBalance(w http.ResponseWriter, r *http.Request) {
	companyID, asOf, err := h.asOf(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), companyID, asOf)
	if err != nil {
		h.fail(w, "trial balance", companyID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, tb)
}

func (h *Handler) trialBalanceCSV(w http.ResponseWriter, r *http.Request) {
	companyID, asOf, err := h.asOf(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	tb, err := h.service.TrialBalance(r.Context(), companyID, asOf)
	if err != nil {
		h.fail(w, "trial balance export", companyID, err)
		return
	}
	setCSVHeaders(w, fmt.Sprintf("trial-balance-%d-%s.csv", companyID, tb.AsOf))
	if err := WriteTrialBalanceCSV(w, companyID, tb); err != nil {
		h.logger.Error("write trial balance csv", slog.Int64("company_id", companyID), slog.Any("error", err))
	}
}

func (h *Handler) glFilter(r *http.Request) (GLFilter, error) {
	companyID, err := httpx.CompanyID(r)
	if err != nil {
		return GLFilter{}, err
	}
	start, end, err := h.period(r)
	if err != nil {
		return GLFilter{}, err
	}
	ids, err := httpx.QueryInt64s(r, "account_id")
	if err != nil {
		return GLFilter{}, err
	}
	return GLFilter{
		CompanyID:            companyID,
		Start:                start,
		End:                  end,
		AccountIDs:           ids,
		CodePrefix:           strings.TrimSpace(r.URL.Query().Get("code_prefix")),
		OnlyWithTransactions: httpx.QueryBool(r, "only_with_transactions"),
	}, nil
}

func (h *Handler) generalLedger(w http.ResponseWriter, r *http.Request) {
	filter, err := h.glFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	gl, err := h.service.GeneralLedger(r.Context(), filter)
	if err != nil {
		h.fail(w, "general ledger", filter.CompanyID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, gl)
}

func (h *Handler) generalLedgerCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := h.glFilter(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	gl, err := h.service.GeneralLedger(r.Context(), filter)
	if err != nil {
		h.fail(w, "general ledger export", filter.CompanyID, err)
		return
	}
	setCSVHeaders(w, fmt.Sprintf("general-ledger-%d-%s-%s.csv", filter.CompanyID, gl.Start, gl.End))
	if err := WriteGeneralLedgerCSV(w, filter.CompanyID, gl); err != nil {
		h.logger.Error("write general ledger csv", slog.Int64("company_id", filter.CompanyID), slog.Any("error", err))
	}
}

func (h *Handler) profitLoss(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.CompanyID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	start, end, err := h.period(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pl, err := h.service.ProfitAndLoss(r.Context(), companyID, start, end)
	if err != nil {
		h.fail(w, "profit and loss", companyID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pl)
}

func (h *Handler) balanceSheet(w http.ResponseWriter, r *http.Request) {
	companyID, asOf, err := h.asOf(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	bs, err := h.service.BalanceSheet(r.Context(), companyID, asOf)
	if err != nil {
		h.fail(w, "balance sheet", companyID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bs)
}

func (h *Handler) cashBank(w http.ResponseWriter, r *http.Request) {
	companyID, asOf, err := h.asOf(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	pos, err := h.service.CashBank(r.Context(), companyID, asOf)
	if err != nil {
		h.fail(w, "cash bank", companyID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pos)
}

func (h *Handler) aging(w http.ResponseWriter, r *http.Request) {
	companyID, asOf, err := h.asOf(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	kind, err := ParseAgingKind(chi.URLParam(r, "kind"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	parties, err := httpx.QueryInt64s(r, "party_id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var partyID int64
	if len(parties) > 0 {
		partyID = parties[0]
	}
	report, err := h.service.Aging(r.Context(), AgingFilter{CompanyID: companyID, Kind: kind, AsOf: asOf, PartyID: partyID})
	if err != nil {
		h.fail(w, "aging", companyID, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) clearCache(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearCache(r.Context()); err != nil {
		h.logger.Error("clear report cache", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, report string, companyID int64, err error) {
	h.logger.Error("build report", slog.String("report", report), slog.Int64("company_id", companyID), slog.Any("error", err))
	httpx.RespondError(w, err)
}

func setCSVHeaders(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
}
