package integration

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
	"github.com/MarselKurniawan/erp-system/internal/accounting/mappings"
	"github.com/MarselKurniawan/erp-system/internal/reportcache"
	"github.com/MarselKurniawan/erp-system/internal/shared"
)

type fakeLedger struct {
	posted []accounting.PostingInput
	refs   map[string]bool
}

func (l *fakeLedger) PostJournal(_ context.Context, in accounting.PostingInput) (accounting.JournalEntry, error) {
	if err := in.Validate(); err != nil {
		return accounting.JournalEntry{}, err
	}
	if l.refs == nil {
		l.refs = make(map[string]bool)
	}
	key := in.ReferenceType + "/" + in.ReferenceID
	if l.refs[key] {
		return accounting.JournalEntry{}, fmt.Errorf("%w: %s", accounting.ErrReferenceConflict, key)
	}
	l.refs[key] = true
	l.posted = append(l.posted, in)
	debit, credit := in.Totals()
	return accounting.JournalEntry{ID: int64(len(l.posted)), CompanyID: in.CompanyID, ReferenceType: in.ReferenceType,
		TotalDebit: debit, TotalCredit: credit, Status: accounting.JournalStatusPosted}, nil
}

type fakeMappings map[string]int64

func (m fakeMappings) Get(_ context.Context, companyID int64, module, key string) (mappings.AccountMapping, error) {
	id, ok := m[module+"/"+key]
	if !ok {
		return mappings.AccountMapping{}, fmt.Errorf("%w: %s/%s", accounting.ErrMappingNotFound, module, key)
	}
	return mappings.AccountMapping{CompanyID: companyID, Module: module, Key: key, AccountID: id}, nil
}

func defaultMappings() fakeMappings {
	return fakeMappings{
		"SALES/ar":             1201,
		"SALES/revenue":        4101,
		"SALES/vat_out":        2102,
		"SALES/cash":           1102,
		"PURCHASING/ap":        2101,
		"PURCHASING/inventory": 1301,
		"PURCHASING/expense":   6101,
		"PURCHASING/vat_in":    1401,
		"PURCHASING/cash":      1102,
	}
}

func newHooks(m fakeMappings) (*Hooks, *fakeLedger) {
	ledger := &fakeLedger{}
	return NewHooks(ledger, m, slog.New(slog.NewTextHandler(io.Discard, nil))), ledger
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var day = time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)

func requireLine(t *testing.T, line accounting.PostingLineInput, account int64, debit, credit string) {
	t.Helper()
	require.Equal(t, account, line.AccountID)
	require.Truef(t, d(debit).Equal(line.Debit), "debit %s", line.Debit)
	require.Truef(t, d(credit).Equal(line.Credit), "credit %s", line.Credit)
}

func TestSalesInvoicePostsReceivableRevenueAndVAT(t *testing.T) {
	hooks, ledger := newHooks(defaultMappings())
	err := hooks.HandleSalesInvoiceIssued(context.Background(), SalesInvoiceIssued{
		CompanyID: 1, InvoiceID: 10, Number: "INV-10", Date: day, Subtotal: d("60000"), Tax: d("6600"),
	})
	require.NoError(t, err)
	require.Len(t, ledger.posted, 1)
	in := ledger.posted[0]
	require.Equal(t, RefSalesInvoice, in.ReferenceType)
	require.Equal(t, ReferenceID(RefSalesInvoice, 1, 10), in.ReferenceID)
	require.Len(t, in.Lines, 3)
	requireLine(t, in.Lines[0], 1201, "66600", "0")
	requireLine(t, in.Lines[1], 4101, "0", "60000")
	requireLine(t, in.Lines[2], 2102, "0", "6600")
}

func TestSalesInvoiceWithoutTaxSkipsVAT(t *testing.T) {
	m := defaultMappings()
	delete(m, "SALES/vat_out")
	hooks, ledger := newHooks(m)
	err := hooks.HandleSalesInvoiceIssued(context.Background(), SalesInvoiceIssued{
		CompanyID: 1, InvoiceID: 11, Number: "INV-11", Date: day, Subtotal: d("500"), Tax: decimal.Zero,
	})
	require.NoError(t, err)
	require.Len(t, ledger.posted[0].Lines, 2)
}

func TestReplayedEventIsIdempotent(t *testing.T) {
	hooks, ledger := newHooks(defaultMappings())
	evt := CustomerPaymentReceived{CompanyID: 1, PaymentID: 3, Number: "RCV-3", Date: day, Amount: d("100.004")}
	require.NoError(t, hooks.HandleCustomerPaymentReceived(context.Background(), evt))
	require.NoError(t, hooks.HandleCustomerPaymentReceived(context.Background(), evt))
	require.Len(t, ledger.posted, 1)
	requireLine(t, ledger.posted[0].Lines[0], 1102, "100", "0")
	requireLine(t, ledger.posted[0].Lines[1], 1201, "0", "100")
}

func TestZeroAmountsAreNoOps(t *testing.T) {
	hooks, ledger := newHooks(defaultMappings())
	ctx := context.Background()
	require.NoError(t, hooks.HandleSalesInvoiceIssued(ctx, SalesInvoiceIssued{CompanyID: 1, InvoiceID: 1, Date: day}))
	require.NoError(t, hooks.HandleCustomerPaymentReceived(ctx, CustomerPaymentReceived{CompanyID: 1, PaymentID: 1, Date: day}))
	require.NoError(t, hooks.HandlePurchaseInvoiceReceived(ctx, PurchaseInvoiceReceived{CompanyID: 1, InvoiceID: 1, Date: day}))
	require.NoError(t, hooks.HandleSupplierPaymentMade(ctx, SupplierPaymentMade{CompanyID: 1, PaymentID: 1, Date: day, Amount: d("0.001")}))
	require.Empty(t, ledger.posted)
}

func TestPurchaseInvoiceDebitsInventoryOrExpense(t *testing.T) {
	hooks, ledger := newHooks(defaultMappings())
	ctx := context.Background()
	require.NoError(t, hooks.HandlePurchaseInvoiceReceived(ctx, PurchaseInvoiceReceived{
		CompanyID: 1, InvoiceID: 20, Number: "PI-20", Date: day, Subtotal: d("1000"), Tax: d("110"), Inventory: true,
	}))
	require.NoError(t, hooks.HandlePurchaseInvoiceReceived(ctx, PurchaseInvoiceReceived{
		CompanyID: 1, InvoiceID: 21, Number: "PI-21", Date: day, Subtotal: d("250"),
	}))
	require.Len(t, ledger.posted, 2)

	stock := ledger.posted[0].Lines
	require.Len(t, stock, 3)
	requireLine(t, stock[0], 1301, "1000", "0")
	requireLine(t, stock[1], 1401, "110", "0")
	requireLine(t, stock[2], 2101, "0", "1110")

	services := ledger.posted[1].Lines
	require.Len(t, services, 2)
	requireLine(t, services[0], 6101, "250", "0")
	requireLine(t, services[1], 2101, "0", "250")
}

func TestSupplierPaymentPostsPayableAgainstCash(t *testing.T) {
	hooks, ledger := newHooks(defaultMappings())
	require.NoError(t, hooks.HandleSupplierPaymentMade(context.Background(), SupplierPaymentMade{
		CompanyID: 1, PaymentID: 5, Number: "PAY-5", Date: day, Amount: d("1110"),
	}))
	in := ledger.posted[0]
	require.Equal(t, RefSupplierPayment, in.ReferenceType)
	requireLine(t, in.Lines[0], 2101, "1110", "0")
	requireLine(t, in.Lines[1], 1102, "0", "1110")
}

func TestReferenceTypesInvalidatePartyFamilies(t *testing.T) {
	sales := []reportcache.Family{reportcache.FamilyAccounting, reportcache.FamilySales}
	purchasing := []reportcache.Family{reportcache.FamilyAccounting, reportcache.FamilyPurchasing}
	require.Equal(t, sales, accounting.AffectedFamilies(RefSalesInvoice))
	require.Equal(t, sales, accounting.AffectedFamilies(RefSalesPayment))
	require.Equal(t, purchasing, accounting.AffectedFamilies(RefPurchaseInvoice))
	require.Equal(t, purchasing, accounting.AffectedFamilies(RefSupplierPayment))
}

func TestMissingMappingFailsWithoutPosting(t *testing.T) {
	m := defaultMappings()
	delete(m, "SALES/revenue")
	hooks, ledger := newHooks(m)
	err := hooks.HandleSalesInvoiceIssued(context.Background(), SalesInvoiceIssued{
		CompanyID: 1, InvoiceID: 12, Date: day, Subtotal: d("10"),
	})
	require.ErrorIs(t, err, accounting.ErrMappingNotFound)
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, ledger.posted)
}

func TestEventHeaderValidation(t *testing.T) {
	hooks, _ := newHooks(defaultMappings())
	ctx := context.Background()
	err := hooks.HandleCustomerPaymentReceived(ctx, CustomerPaymentReceived{CompanyID: 1, PaymentID: 1, Amount: d("5")})
	require.ErrorIs(t, err, shared.ErrValidation)
	err = hooks.HandleSalesInvoiceIssued(ctx, SalesInvoiceIssued{InvoiceID: 1, Number: "X", Date: day, Subtotal: d("1")})
	require.ErrorIs(t, err, shared.ErrValidation)
	err = hooks.HandleSupplierPaymentMade(ctx, SupplierPaymentMade{CompanyID: 1, PaymentID: 2, Date: day, Amount: d("-1")})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestReferenceIDIsStablePerTenant(t *testing.T) {
	require.Equal(t, ReferenceID(RefSalesInvoice, 1, 10), ReferenceID(RefSalesInvoice, 1, 10))
	require.NotEqual(t, ReferenceID(RefSalesInvoice, 1, 10), ReferenceID(RefSalesInvoice, 2, 10))
	require.NotEqual(t, ReferenceID(RefSalesInvoice, 1, 10), ReferenceID(RefSalesPayment, 1, 10))
}

func TestHandlerAcceptsEvent(t *testing.T) {
	hooks, ledger := newHooks(defaultMappings())
	h := NewHandler(slog.New(slog.NewTextHandler(io.Discard, nil)), hooks)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithCompany(req.Context(), 1)))
		})
	})
	r.Route("/integration", h.MountRoutes)

	body := `{"id":7,"number":"INV-7","date":"2024-01-05","subtotal":"100","tax":"11"}`
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/integration/sales-invoices", strings.NewReader(body)))
	require.Equal(t, http.StatusAccepted, rr.Code, rr.Body.String())
	require.Len(t, ledger.posted, 1)

	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/integration/supplier-payments", strings.NewReader(`{"id":0,"date":"05-01-2024"}`)))
	require.Equal(t, http.StatusBadRequest, rr.Code)
	require.Contains(t, rr.Body.String(), "paymentRequest.ID")
}
