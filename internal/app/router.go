package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
	"github.com/MarselKurniawan/erp-system/internal/accounting/accounts"
	"github.com/MarselKurniawan/erp-system/internal/accounting/mappings"
	"github.com/MarselKurniawan/erp-system/internal/accounting/reports"
	"github.com/MarselKurniawan/erp-system/internal/integration"
	"github.com/MarselKurniawan/erp-system/internal/observability"
	"github.com/MarselKurniawan/erp-system/internal/platform/httpx"
	"github.com/MarselKurniawan/erp-system/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	JournalHandler     *accounting.Handler
	AccountsHandler    *accounts.Handler
	MappingsHandler    *mappings.Handler
	ReportsHandler     *reports.Handler
	IntegrationHandler *integration.Handler
	JobHandler         *jobs.Handler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router serving the ledger API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	if params.Config == nil || !params.Config.IsProduction() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	var defaultCompany int64
	if params.Config != nil {
		defaultCompany = params.Config.DefaultCompanyID
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Use(CompanyMiddleware(defaultCompany))
		if params.JournalHandler != nil {
			api.Route("/journals", params.JournalHandler.MountRoutes)
		}
		if params.AccountsHandler != nil {
			api.Route("/accounts", params.AccountsHandler.MountRoutes)
		}
		if params.MappingsHandler != nil {
			api.Route("/account-mappings", params.MappingsHandler.MountRoutes)
		}
		if params.ReportsHandler != nil {
			api.Route("/reports", params.ReportsHandler.MountRoutes)
		}
		if params.IntegrationHandler != nil {
			api.Route("/integration", params.IntegrationHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", "")
	})

	return r
}
