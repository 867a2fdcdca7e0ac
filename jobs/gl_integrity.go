package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/MarselKurniawan/erp-system/internal/accounting/reports"
	jobmetrics "github.com/MarselKurniawan/erp-system/internal/jobs"
)

// ReportSource is the slice of the report service used by jobs.
type ReportSource interface {
	Companies(ctx context.Context) ([]int64, error)
	TrialBalance(ctx context.Context, companyID int64, asOf time.Time) (reports.TrialBalance, error)
	BalanceSheet(ctx context.Context, companyID int64, asOf time.Time) (reports.BalanceSheet, error)
	CashBank(ctx context.Context, companyID int64, asOf time.Time) (reports.CashBankPosition, error)
}

// GLIntegrityJob verifies that the trial balance and balance sheet of every
// company balance as of today.
type GLIntegrityJob struct {
	Reports ReportSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewGLIntegrityJob wires dependencies for the integrity handler.
func NewGLIntegrityJob(source ReportSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *GLIntegrityJob {
	return &GLIntegrityJob{Reports: source, Logger: logger, Metrics: metrics, clock: func() time.Time { return time.Now().UTC() }}
}

// IntegrityResult summarises one run.
type IntegrityResult struct {
	Checked    int
	Imbalanced []int64
}

// Handle processes ledger integrity tasks.
func (j *GLIntegrityJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("gl integrity: handler not configured")
	}
	payload, err := decodeScope(t)
	if err != nil {
		return fmt.Errorf("gl integrity: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskLedgerIntegrity)
	_, err = j.Run(ctx, payload.CompanyID)
	return tracker.End(err)
}

// Run checks one company, or all when companyID is zero.
func (j *GLIntegrityJob) Run(ctx context.Context, companyID int64) (IntegrityResult, error) {
	logger := jobLogger(j.Logger, TaskLedgerIntegrity)
	companies, err := scopeCompanies(ctx, j.Reports, companyID)
	if err != nil {
		logger.Error("load companies", slog.Any("error", err))
		return IntegrityResult{}, err
	}
	asOf := j.clock()
	var result IntegrityResult
	for _, id := range companies {
		tb, err := j.Reports.TrialBalance(ctx, id, asOf)
		if err != nil {
			return result, fmt.Errorf("gl integrity: trial balance company %d: %w", id, err)
		}
		bs, err := j.Reports.BalanceSheet(ctx, id, asOf)
		if err != nil {
			return result, fmt.Errorf("gl integrity: balance sheet company %d: %w", id, err)
		}
		result.Checked++
		ok := true
		if !tb.Balanced {
			ok = false
			j.Metrics.AddImbalance("trial_balance", id)
			logger.Error("trial balance out of balance",
				slog.Int64("company_id", id),
				slog.String("as_of", tb.AsOf),
				slog.String("total_debits", tb.TotalDebits.String()),
				slog.String("total_credits", tb.TotalCredits.String()))
		}
		if !bs.Balanced {
			ok = false
			j.Metrics.AddImbalance("balance_sheet", id)
			logger.Error("balance sheet out of balance",
				slog.Int64("company_id", id),
				slog.String("as_of", bs.AsOf),
				slog.String("total_assets", bs.Assets.Totals.Total.String()),
				slog.String("total_liabilities_equity", bs.TotalLiabilitiesAndEquity.String()))
		}
		if !ok {
			result.Imbalanced = append(result.Imbalanced, id)
		}
	}
	logger.Info("gl integrity check completed", slog.Int("companies", result.Checked), slog.Int("imbalanced", len(result.Imbalanced)))
	return result, nil
}

func scopeCompanies(ctx context.Context, source ReportSource, companyID int64) ([]int64, error) {
	if companyID > 0 {
		return []int64{companyID}, nil
	}
	return source.Companies(ctx)
}

func jobLogger(logger *slog.Logger, job string) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return logger.With(slog.String("job", job))
}
