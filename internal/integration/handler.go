package integration

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/MarselKurniawan/erp-system/internal/platform/httpx"
	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// Handler accepts workflow events over HTTP.
type Handler struct {
	logger    *slog.Logger
	hooks     *Hooks
	validator *validator.Validate
}

// NewHandler builds an integration handler.
func NewHandler(logger *slog.Logger, hooks *Hooks) *Handler {
	return &Handler{logger: logger, hooks: hooks, validator: validator.New()}
}

// MountRoutes registers integration routes relative to the mount point.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/sales-invoices", h.salesInvoice)
	r.Post("/customer-payments", h.customerPayment)
	r.Post("/purchase-invoices", h.purchaseInvoice)
	r.Post("/supplier-payments", h.supplierPayment)
}

type invoiceRequest struct {
	ID        int64           `json:"id" validate:"required,gt=0"`
	Number    string          `json:"number" validate:"required,max=64"`
	Date      string          `json:"date" validate:"required,datetime=2006-01-02"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	Tax       decimal.Decimal `json:"tax"`
	Inventory bool            `json:"inventory"`
}

type paymentRequest struct {
	ID     int64           `json:"id" validate:"required,gt=0"`
	Number string          `json:"number" validate:"required,max=64"`
	Date   string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount decimal.Decimal `json:"amount"`
}

// decode reads and validates the body; it writes the problem response and
// returns false on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) (int64, bool) {
	companyID, err := httpx.CompanyID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return 0, false
	}
	if err := httpx.DecodeJSON(r, dst); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Request", "malformed JSON body")
		return 0, false
	}
	if err := h.validator.Struct(dst); err != nil {
		httpx.ValidationProblem(w, httpx.FieldErrors(err))
		return 0, false
	}
	return companyID, true
}

func (h *Handler) done(w http.ResponseWriter, event string, companyID int64, err error) {
	if err != nil {
		h.logger.Warn("integration event rejected", slog.String("event", event), slog.Int64("company_id", companyID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func (h *Handler) salesInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	err = h.hooks.HandleSalesInvoiceIssued(r.Context(), SalesInvoiceIssued{
		CompanyID: companyID, InvoiceID: req.ID, Number: req.Number, Date: date,
		Subtotal: req.Subtotal, Tax: req.Tax,
	})
	h.done(w, RefSalesInvoice, companyID, err)
}

func (h *Handler) customerPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	err = h.hooks.HandleCustomerPaymentReceived(r.Context(), CustomerPaymentReceived{
		CompanyID: companyID, PaymentID: req.ID, Number: req.Number, Date: date, Amount: req.Amount,
	})
	h.done(w, RefSalesPayment, companyID, err)
}

func (h *Handler) purchaseInvoice(w http.ResponseWriter, r *http.Request) {
	var req invoiceRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	err = h.hooks.HandlePurchaseInvoiceReceived(r.Context(), PurchaseInvoiceReceived{
		CompanyID: companyID, InvoiceID: req.ID, Number: req.Number, Date: date,
		Subtotal: req.Subtotal, Tax: req.Tax, Inventory: req.Inventory,
	})
	h.done(w, RefPurchaseInvoice, companyID, err)
}

func (h *Handler) supplierPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	companyID, ok := h.decode(w, r, &req)
	if !ok {
		return
	}
	date, err := shared.ParseDate(req.Date)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	err = h.hooks.HandleSupplierPaymentMade(r.Context(), SupplierPaymentMade{
		CompanyID: companyID, PaymentID: req.ID, Number: req.Number, Date: date, Amount: req.Amount,
	})
	h.done(w, RefSupplierPayment, companyID, err)
}
