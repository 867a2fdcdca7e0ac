package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/MarselKurniawan/erp-system/internal/jobs"
)

// ReportsWarmupJob pre-populates the report cache with today's statements.
type ReportsWarmupJob struct {
	Reports ReportSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
	clock   func() time.Time
}

// NewReportsWarmupJob wires dependencies for the warmup handler.
func NewReportsWarmupJob(source ReportSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReportsWarmupJob {
	return &ReportsWarmupJob{Reports: source, Logger: logger, Metrics: metrics, clock: func() time.Time { return time.Now().UTC() }}
}

// Handle processes report warmup tasks.
func (j *ReportsWarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("reports warmup: handler not configured")
	}
	payload, err := decodeScope(t)
	if err != nil {
		return fmt.Errorf("reports warmup: decode payload: %v: %w", err, asynq.SkipRetry)
	}
	tracker := j.Metrics.Track(TaskReportsWarmup)
	return tracker.End(j.Run(ctx, payload.CompanyID))
}

// Run warms one company, or all when companyID is zero.
func (j *ReportsWarmupJob) Run(ctx context.Context, companyID int64) error {
	logger := jobLogger(j.Logger, TaskReportsWarmup)
	companies, err := scopeCompanies(ctx, j.Reports, companyID)
	if err != nil {
		logger.Error("load companies", slog.Any("error", err))
		return err
	}
	start := time.Now()
	asOf := j.clock()
	for _, id := range companies {
		scopeCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
		err := j.warm(scopeCtx, id, asOf)
		cancel()
		if err != nil {
			logger.Error("warm company", slog.Int64("company_id", id), slog.Any("error", err))
			return err
		}
	}
	logger.Info("completed reports warmup", slog.Int("companies", len(companies)), slog.Duration("duration", time.Since(start)))
	return nil
}

func (j *ReportsWarmupJob) warm(ctx context.Context, companyID int64, asOf time.Time) error {
	if _, err := j.Reports.TrialBalance(ctx, companyID, asOf); err != nil {
		return err
	}
	if _, err := j.Reports.BalanceSheet(ctx, companyID, asOf); err != nil {
		return err
	}
	_, err := j.Reports.CashBank(ctx, companyID, asOf)
	return err
}
