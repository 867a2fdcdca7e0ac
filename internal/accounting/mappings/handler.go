package mappings

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MarselKurniawan/erp-system/internal/platform/httpx"
)

// Handler exposes the integration account mappings of the current company.
type Handler struct {
	repo      Repository
	logger    *slog.Logger
	validator *validator.Validate
}

func NewHandler(logger *slog.Logger, repo Repository) *Handler {
	return &Handler{repo: repo, logger: logger, validator: validator.New()}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Put("/{module}/{key}", h.upsert)
}

type upsertRequest struct {
	Module    string `json:"-" validate:"oneof=SALES PURCHASING"`
	Key       string `json:"-" validate:"oneof=ar revenue vat_out cash ap inventory expense vat_in"`
	AccountID int64  `json:"accountId" validate:"gt=0"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.CompanyID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	items, err := h.repo.List(r.Context(), companyID)
	if err != nil {
		h.logger.Error("list account mappings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if items == nil {
		items = []AccountMapping{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"mappings": items})
}

func (h *Handler) upsert(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.CompanyID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req upsertRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	req.Module = strings.ToUpper(chi.URLParam(r, "module"))
	req.Key = strings.ToLower(chi.URLParam(r, "key"))
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}
	saved, err := h.repo.Upsert(r.Context(), AccountMapping{
		CompanyID: companyID,
		Module:    req.Module,
		Key:       req.Key,
		AccountID: req.AccountID,
	})
	if err != nil {
		h.logger.Warn("upsert account mapping", slog.Int64("company_id", companyID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, saved)
}
