package accounting

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/MarselKurniawan/erp-system/internal/platform/httpx"
)

// Handler wires journal endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers journal routes relative to the mount point.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}/post", h.postDraft)
	r.Delete("/{id}", h.remove)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.CompanyID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var req createJournalRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return
	}
	input, err := req.toInput(companyID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	entry, err := h.service.PostJournal(r.Context(), input)
	if err != nil {
		h.logger.Info("journal rejected", slog.Int64("company_id", companyID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, newPostJournalResponse(entry))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companyID, err := httpx.CompanyID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	filter := JournalFilter{CompanyID: companyID, Status: JournalStatus(strings.ToUpper(r.URL.Query().Get("status")))}
	if filter.From, err = httpx.QueryDate(r, "from", filter.From); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if filter.To, err = httpx.QueryDate(r, "to", filter.To); err != nil {
		httpx.RespondError(w, err)
		return
	}
	entries, err := h.service.ListJournals(r.Context(), filter)
	if err != nil {
		h.logger.Error("list journals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []JournalEntry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	companyID, entryID, ok := h.ids(w, r)
	if !ok {
		return
	}
	entry, err := h.service.GetJournal(r.Context(), companyID, entryID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, entry)
}

func (h *Handler) postDraft(w http.ResponseWriter, r *http.Request) {
	companyID, entryID, ok := h.ids(w, r)
	if !ok {
		return
	}
	entry, err := h.service.PostDraft(r.Context(), companyID, entryID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, newPostJournalResponse(entry))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	companyID, entryID, ok := h.ids(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteJournal(r.Context(), companyID, entryID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ids(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	companyID, err := httpx.CompanyID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	entryID, err := httpx.PathInt64(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return 0, 0, false
	}
	return companyID, entryID, true
}
