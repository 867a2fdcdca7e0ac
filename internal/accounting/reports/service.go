package reports

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/MarselKurniawan/erp-system/internal/reportcache"
	"github.com/MarselKurniawan/erp-system/internal/shared"
)

// Report names used in cache keys and metrics.
const (
	ReportTrialBalance  = "trial_balance"
	ReportGeneralLedger = "general_ledger"
	ReportProfitLoss    = "profit_loss"
	ReportBalanceSheet  = "balance_sheet"
	ReportCashBank      = "cash_bank"
	ReportAging         = "aging"
)

// Options tunes report semantics.
type Options struct {
	// FiscalYearStartMonth is 1-12; January when unset.
	FiscalYearStartMonth int
}

// Service computes financial statements through the report cache.
type Service struct {
	repo   Repository
	loader *reportcache.Loader
	opts   Options
	logger *slog.Logger
}

// NewService constructs the report service. A nil loader disables caching.
func NewService(repo Repository, loader *reportcache.Loader, opts Options, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if loader == nil {
		loader = reportcache.NewLoader(nil, 0, nil, logger)
	}
	if opts.FiscalYearStartMonth < 1 || opts.FiscalYearStartMonth > 12 {
		opts.FiscalYearStartMonth = 1
	}
	return &Service{repo: repo, loader: loader, opts: opts, logger: logger}
}

type asOfParams struct {
	AsOf string `json:"as_of"`
}

type periodParams struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type glParams struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	AccountIDs []int64 `json:"account_ids,omitempty"`
	CodePrefix string  `json:"code_prefix,omitempty"`
	OnlyActive bool    `json:"only_with_transactions,omitempty"`
}

type agingParams struct {
	Kind    AgingKind `json:"kind"`
	AsOf    string    `json:"as_of"`
	PartyID int64     `json:"party_id,omitempty"`
}

func day(t time.Time) string {
	return shared.DateOnly(t).Format(shared.DateLayout)
}

// TrialBalance returns balances of active accounts as of asOf.
func (s *Service) TrialBalance(ctx context.Context, companyID int64, asOf time.Time) (TrialBalance, error) {
	asOf = shared.DateOnly(asOf)
	key := reportcache.Key(reportcache.FamilyAccounting, companyID, ReportTrialBalance, asOfParams{AsOf: day(asOf)})
	return reportcache.Load(ctx, s.loader, key, ReportTrialBalance, func(ctx context.Context) (TrialBalance, error) {
		accounts, err := s.repo.Accounts(ctx, companyID)
		if err != nil {
			return TrialBalance{}, err
		}
		sums, err := s.repo.Balances(ctx, companyID, Through(asOf))
		if err != nil {
			return TrialBalance{}, err
		}
		return BuildTrialBalance(accounts, sums, asOf), nil
	})
}

// GeneralLedger returns per-account ledgers with running balances.
func (s *Service) GeneralLedger(ctx context.Context, filter GLFilter) (GeneralLedger, error) {
	filter.Start = shared.DateOnly(filter.Start)
	filter.End = shared.DateOnly(filter.End)
	filter.CodePrefix = strings.TrimSpace(filter.CodePrefix)
	ids := append([]int64(nil), filter.AccountIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	filter.AccountIDs = ids
	params := glParams{
		Start:      day(filter.Start),
		End:        day(filter.End),
		AccountIDs: ids,
		CodePrefix: filter.CodePrefix,
		OnlyActive: filter.OnlyWithTransactions,
	}
	key := reportcache.Key(reportcache.FamilyAccounting, filter.CompanyID, ReportGeneralLedger, params)
	return reportcache.Load(ctx, s.loader, key, ReportGeneralLedger, func(ctx context.Context) (GeneralLedger, error) {
		accounts, err := s.repo.Accounts(ctx, filter.CompanyID)
		if err != nil {
			return GeneralLedger{}, err
		}
		opening, err := s.repo.Balances(ctx, filter.CompanyID, Before(filter.Start))
		if err != nil {
			return GeneralLedger{}, err
		}
		var lines []LedgerRow
		if !filter.End.Before(filter.Start) {
			lines, err = s.repo.LedgerLines(ctx, filter.CompanyID, Window{From: filter.Start, To: filter.End}, filter.AccountIDs)
			if err != nil {
				return GeneralLedger{}, err
			}
		}
		return BuildGeneralLedger(accounts, opening, lines, filter), nil
	})
}

// ProfitAndLoss returns the income statement for [start, end].
func (s *Service) ProfitAndLoss(ctx context.Context, companyID int64, start, end time.Time) (ProfitAndLoss, error) {
	start, end = shared.DateOnly(start), shared.DateOnly(end)
	key := reportcache.Key(reportcache.FamilyAccounting, companyID, ReportProfitLoss, periodParams{Start: day(start), End: day(end)})
	return reportcache.Load(ctx, s.loader, key, ReportProfitLoss, func(ctx context.Context) (ProfitAndLoss, error) {
		accounts, err := s.repo.Accounts(ctx, companyID)
		if err != nil {
			return ProfitAndLoss{}, err
		}
		var sums []BalanceRow
		if !end.Before(start) {
			sums, err = s.repo.Balances(ctx, companyID, Window{From: start, To: end})
			if err != nil {
				return ProfitAndLoss{}, err
			}
		}
		return BuildProfitAndLoss(accounts, sums, start, end), nil
	})
}

// BalanceSheet returns the statement of financial position as of asOf.
func (s *Service) BalanceSheet(ctx context.Context, companyID int64, asOf time.Time) (BalanceSheet, error) {
	asOf = shared.DateOnly(asOf)
	key := reportcache.Key(reportcache.FamilyAccounting, companyID, ReportBalanceSheet, asOfParams{AsOf: day(asOf)})
	return reportcache.Load(ctx, s.loader, key, ReportBalanceSheet, func(ctx context.Context) (BalanceSheet, error) {
		accounts, err := s.repo.Accounts(ctx, companyID)
		if err != nil {
			return BalanceSheet{}, err
		}
		fyStart := FiscalYearStart(asOf, s.opts.FiscalYearStartMonth)
		in := BalanceSheetInput{AsOf: asOf, FiscalYearStart: fyStart}
		if in.Cumulative, err = s.repo.Balances(ctx, companyID, Through(asOf)); err != nil {
			return BalanceSheet{}, err
		}
		if in.CurrentYear, err = s.repo.Balances(ctx, companyID, Window{From: fyStart, To: asOf}); err != nil {
			return BalanceSheet{}, err
		}
		if in.PriorYears, err = s.repo.Balances(ctx, companyID, Before(fyStart)); err != nil {
			return BalanceSheet{}, err
		}
		return BuildBalanceSheet(accounts, in), nil
	})
}

// CashBank returns cash and bank balances as of asOf.
func (s *Service) CashBank(ctx context.Context, companyID int64, asOf time.Time) (CashBankPosition, error) {
	asOf = shared.DateOnly(asOf)
	key := reportcache.Key(reportcache.FamilyAccounting, companyID, ReportCashBank, asOfParams{AsOf: day(asOf)})
	return reportcache.Load(ctx, s.loader, key, ReportCashBank, func(ctx context.Context) (CashBankPosition, error) {
		accounts, err := s.repo.Accounts(ctx, companyID)
		if err != nil {
			return CashBankPosition{}, err
		}
		sums, err := s.repo.Balances(ctx, companyID, Through(asOf))
		if err != nil {
			return CashBankPosition{}, err
		}
		return BuildCashBank(accounts, sums, asOf), nil
	})
}

// Aging returns receivables or payables aging as of filter.AsOf.
func (s *Service) Aging(ctx context.Context, filter AgingFilter) (AgingReport, error) {
	if filter.Kind != AgingReceivables && filter.Kind != AgingPayables {
		return AgingReport{}, fmt.Errorf("%w: unknown aging kind %q", shared.ErrValidation, filter.Kind)
	}
	filter.AsOf = shared.DateOnly(filter.AsOf)
	family := reportcache.FamilySales
	if filter.Kind == AgingPayables {
		family = reportcache.FamilyPurchasing
	}
	params := agingParams{Kind: filter.Kind, AsOf: day(filter.AsOf), PartyID: filter.PartyID}
	key := reportcache.Key(family, filter.CompanyID, ReportAging, params)
	return reportcache.Load(ctx, s.loader, key, ReportAging+"_"+string(filter.Kind), func(ctx context.Context) (AgingReport, error) {
		invoices, err := s.repo.OpenInvoices(ctx, filter)
		if err != nil {
			return AgingReport{}, err
		}
		return BuildAging(filter.Kind, invoices, filter.AsOf), nil
	})
}

// Companies lists tenants with a chart of accounts.
func (s *Service) Companies(ctx context.Context) ([]int64, error) {
	return s.repo.CompanyIDs(ctx)
}

// ClearCache drops every cached report.
func (s *Service) ClearCache(ctx context.Context) error {
	if err := s.loader.Cache().Clear(ctx); err != nil {
		return fmt.Errorf("reports: clear cache: %w", err)
	}
	s.logger.Info("report cache cleared")
	return nil
}
