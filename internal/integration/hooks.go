package integration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
	"github.com/MarselKurniawan/erp-system/internal/accounting/mappings"
	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// Ledger exposes journal posting operations required by integrations.
type Ledger interface {
	PostJournal(ctx context.Context, input accounting.PostingInput) (accounting.JournalEntry, error)
}

// AccountMappingRepository provides mapping lookups.
type AccountMappingRepository interface {
	Get(ctx context.Context, companyID int64, module, key string) (mappings.AccountMapping, error)
}

// Hooks turns workflow events from sales and purchasing into ledger postings.
type Hooks struct {
	ledger      Ledger
	mappingRepo AccountMappingRepository
	logger      *slog.Logger
}

// NewHooks constructs integration hooks.
func NewHooks(ledger Ledger, mappingRepo AccountMappingRepository, logger *slog.Logger) *Hooks {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hooks{ledger: ledger, mappingRepo: mappingRepo, logger: logger}
}

func (h *Hooks) resolveAccount(ctx context.Context, companyID int64, module, key string) (int64, error) {
	mapping, err := h.mappingRepo.Get(ctx, companyID, module, key)
	if err != nil {
		return 0, err
	}
	return mapping.AccountID, nil
}

func (h *Hooks) post(ctx context.Context, input accounting.PostingInput) error {
	entry, err := h.ledger.PostJournal(ctx, input)
	if err != nil {
		if errors.Is(err, accounting.ErrReferenceConflict) {
			h.logger.Info("integration event already posted",
				slog.String("reference_type", input.ReferenceType),
				slog.String("reference_id", input.ReferenceID))
			return nil
		}
		return err
	}
	h.logger.Info("integration event posted",
		slog.Int64("company_id", entry.CompanyID),
		slog.String("number", entry.Number),
		slog.String("reference_type", entry.ReferenceType))
	return nil
}

func (h *Hooks) ready() bool {
	return h != nil && h.ledger != nil && h.mappingRepo != nil
}

func requireHeader(companyID, sourceID int64, date time.Time, what string) error {
	if companyID <= 0 || sourceID <= 0 {
		return fmt.Errorf("%w: integration: %s company and id required", shared.ErrValidation, what)
	}
	if date.IsZero() {
		return fmt.Errorf("%w: integration: %s date required", shared.ErrValidation, what)
	}
	return nil
}

// HandleSalesInvoiceIssued debits receivables for the gross amount and
// credits revenue and, when taxed, output VAT.
func (h *Hooks) HandleSalesInvoiceIssued(ctx context.Context, evt SalesInvoiceIssued) error {
	if !h.ready() {
		return nil
	}
	if err := requireHeader(evt.CompanyID, evt.InvoiceID, evt.Date, "sales invoice"); err != nil {
		return err
	}
	subtotal, tax := round2(evt.Subtotal), round2(evt.Tax)
	if subtotal.IsNegative() || tax.IsNegative() {
		return fmt.Errorf("%w: integration: sales invoice amounts must not be negative", shared.ErrValidation)
	}
	total := subtotal.Add(tax)
	if total.IsZero() {
		return nil
	}
	arAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModuleSales, mappings.KeyReceivable)
	if err != nil {
		return err
	}
	lines := []accounting.PostingLineInput{debit(arAccount, total)}
	if subtotal.IsPositive() {
		revenueAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModuleSales, mappings.KeyRevenue)
		if err != nil {
			return err
		}
		lines = append(lines, credit(revenueAccount, subtotal))
	}
	if tax.IsPositive() {
		vatAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModuleSales, mappings.KeyVATOutput)
		if err != nil {
			return err
		}
		lines = append(lines, credit(vatAccount, tax))
	}
	return h.post(ctx, accounting.PostingInput{
		CompanyID:     evt.CompanyID,
		Date:          evt.Date,
		Description:   fmt.Sprintf("Sales Invoice %s", evt.Number),
		ReferenceType: RefSalesInvoice,
		ReferenceID:   ReferenceID(RefSalesInvoice, evt.CompanyID, evt.InvoiceID),
		Lines:         lines,
	})
}

// HandleCustomerPaymentReceived debits cash and credits receivables.
func (h *Hooks) HandleCustomerPaymentReceived(ctx context.Context, evt CustomerPaymentReceived) error {
	if !h.ready() {
		return nil
	}
	if err := requireHeader(evt.CompanyID, evt.PaymentID, evt.Date, "customer payment"); err != nil {
		return err
	}
	amount := round2(evt.Amount)
	if amount.IsNegative() {
		return fmt.Errorf("%w: integration: customer payment amount must not be negative", shared.ErrValidation)
	}
	if amount.IsZero() {
		return nil
	}
	cashAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModuleSales, mappings.KeyCash)
	if err != nil {
		return err
	}
	arAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModuleSales, mappings.KeyReceivable)
	if err != nil {
		return err
	}
	return h.post(ctx, accounting.PostingInput{
		CompanyID:     evt.CompanyID,
		Date:          evt.Date,
		Description:   fmt.Sprintf("Customer Payment %s", evt.Number),
		ReferenceType: RefSalesPayment,
		ReferenceID:   ReferenceID(RefSalesPayment, evt.CompanyID, evt.PaymentID),
		Lines:         []accounting.PostingLineInput{debit(cashAccount, amount), credit(arAccount, amount)},
	})
}

// HandlePurchaseInvoiceReceived debits inventory or expense and input VAT,
// and credits payables for the gross amount.
func (h *Hooks) HandlePurchaseInvoiceReceived(ctx context.Context, evt PurchaseInvoiceReceived) error {
	if !h.ready() {
		return nil
	}
	if err := requireHeader(evt.CompanyID, evt.InvoiceID, evt.Date, "purchase invoice"); err != nil {
		return err
	}
	subtotal, tax := round2(evt.Subtotal), round2(evt.Tax)
	if subtotal.IsNegative() || tax.IsNegative() {
		return fmt.Errorf("%w: integration: purchase invoice amounts must not be negative", shared.ErrValidation)
	}
	total := subtotal.Add(tax)
	if total.IsZero() {
		return nil
	}
	var lines []accounting.PostingLineInput
	if subtotal.IsPositive() {
		debitKey := mappings.KeyExpense
		if evt.Inventory {
			debitKey = mappings.KeyInventory
		}
		debitAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModulePurchasing, debitKey)
		if err != nil {
			return err
		}
		lines = append(lines, debit(debitAccount, subtotal))
	}
	if tax.IsPositive() {
		vatAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModulePurchasing, mappings.KeyVATInput)
		if err != nil {
			return err
		}
		lines = append(lines, debit(vatAccount, tax))
	}
	apAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModulePurchasing, mappings.KeyPayable)
	if err != nil {
		return err
	}
	lines = append(lines, credit(apAccount, total))
	return h.post(ctx, accounting.PostingInput{
		CompanyID:     evt.CompanyID,
		Date:          evt.Date,
		Description:   fmt.Sprintf("Purchase Invoice %s", evt.Number),
		ReferenceType: RefPurchaseInvoice,
		ReferenceID:   ReferenceID(RefPurchaseInvoice, evt.CompanyID, evt.InvoiceID),
		Lines:         lines,
	})
}

// HandleSupplierPaymentMade debits payables and credits cash.
func (h *Hooks) HandleSupplierPaymentMade(ctx context.Context, evt SupplierPaymentMade) error {
	if !h.ready() {
		return nil
	}
	if err := requireHeader(evt.CompanyID, evt.PaymentID, evt.Date, "supplier payment"); err != nil {
		return err
	}
	amount := round2(evt.Amount)
	if amount.IsNegative() {
		return fmt.Errorf("%w: integration: supplier payment amount must not be negative", shared.ErrValidation)
	}
	if amount.IsZero() {
		return nil
	}
	apAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModulePurchasing, mappings.KeyPayable)
	if err != nil {
		return err
	}
	cashAccount, err := h.resolveAccount(ctx, evt.CompanyID, mappings.ModulePurchasing, mappings.KeyCash)
	if err != nil {
		return err
	}
	return h.post(ctx, accounting.PostingInput{
		CompanyID:     evt.CompanyID,
		Date:          evt.Date,
		Description:   fmt.Sprintf("Supplier Payment %s", evt.Number),
		ReferenceType: RefSupplierPayment,
		ReferenceID:   ReferenceID(RefSupplierPayment, evt.CompanyID, evt.PaymentID),
		Lines:         []accounting.PostingLineInput{debit(apAccount, amount), credit(cashAccount, amount)},
	})
}
