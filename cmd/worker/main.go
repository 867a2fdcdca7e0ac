package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MarselKurniawan/erp-system/internal/accounting/reports"
	"github.com/MarselKurniawan/erp-system/internal/app"
	jobmetrics "github.com/MarselKurniawan/erp-system/internal/jobs"
	"github.com/MarselKurniawan/erp-system/internal/platform/db"
	"github.com/MarselKurniawan/erp-system/internal/reportcache"
	"github.com/MarselKurniawan/erp-system/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Default().Warn("load .env", slog.Any("error", err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, db.PoolConfig{MaxConns: int32(cfg.WorkerConcurrency) + 2})
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	reportCache, releaseCache := app.NewReportCache(ctx, cfg, logger)
	defer releaseCache()
	cacheMetrics, err := reportcache.NewMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		logger.Error("register cache metrics", slog.Any("error", err))
		os.Exit(1)
	}
	loader := reportcache.NewLoader(reportCache, cfg.ReportCacheTTL, cacheMetrics, logger)
	reportsService := reports.NewService(reports.NewRepository(pool), loader,
		reports.Options{FiscalYearStartMonth: cfg.FiscalYearStartMonth}, logger)

	metrics := jobmetrics.NewMetrics(prometheus.DefaultRegisterer)
	integrityJob := jobs.NewGLIntegrityJob(reportsService, logger, metrics)
	warmupJob := jobs.NewReportsWarmupJob(reportsService, logger, metrics)

	integrityTask, err := jobs.NewLedgerIntegrityTask(0)
	if err != nil {
		logger.Error("build integrity task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewReportsWarmupTask(0)
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskLedgerIntegrity, Handler: integrityJob.Handle},
	}
	cron := []jobs.CronRegistration{
		{Spec: cfg.IntegrityCron, Task: integrityTask, Options: []asynq.Option{asynq.MaxRetry(3), asynq.Timeout(10 * time.Minute)}},
	}
	if app.SharedReportCache(reportCache) {
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskReportsWarmup, Handler: warmupJob.Handle})
		cron = append(cron, jobs.CronRegistration{Spec: "15 6 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}})
	} else {
		logger.Warn("report cache is not shared with the api, skipping report warmup",
			slog.String("cache_backend", string(cfg.CacheBackend)))
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts:   asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB},
		Concurrency: cfg.WorkerConcurrency,
		Logger:      logger,
		Handlers:    handlers,
		Cron:        cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("worker started", slog.String("integrity_cron", cfg.IntegrityCron), slog.Int("concurrency", cfg.WorkerConcurrency))
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
