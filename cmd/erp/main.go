package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"github.com/MarselKurniawan/erp-system/internal/accounting"
	"github.com/MarselKurniawan/erp-system/internal/accounting/accounts"
	"github.com/MarselKurniawan/erp-system/internal/accounting/mappings"
	"github.com/MarselKurniawan/erp-system/internal/accounting/reports"
	"github.com/MarselKurniawan/erp-system/internal/app"
	"github.com/MarselKurniawan/erp-system/internal/integration"
	"github.com/MarselKurniawan/erp-system/internal/observability"
	"github.com/MarselKurniawan/erp-system/internal/platform/db"
	"github.com/MarselKurniawan/erp-system/internal/reportcache"
	"github.com/MarselKurniawan/erp-system/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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
	slog.SetDefault(logger)

	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.PGDSN); err != nil {
			logger.Error("apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolConfig{MaxConnLifetime: time.Hour})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	metrics := observability.NewMetrics()
	cacheMetrics, err := reportcache.NewMetrics(metrics.Registerer())
	if err != nil {
		logger.Error("register cache metrics", slog.Any("error", err))
		os.Exit(1)
	}
	reportCache, releaseCache := app.NewReportCache(ctx, cfg, logger)
	defer releaseCache()
	loader := reportcache.NewLoader(reportCache, cfg.ReportCacheTTL, cacheMetrics, logger)

	accountingRepo := accounting.NewRepository(dbpool)
	accountingService := accounting.NewService(accountingRepo, loader.Cache(), logger)
	accountsService := accounts.NewService(accounts.NewRepository(dbpool))
	reportsService := reports.NewService(reports.NewRepository(dbpool), loader,
		reports.Options{FiscalYearStartMonth: cfg.FiscalYearStartMonth}, logger)
	mappingRepo := mappings.NewRepository(dbpool)
	integrationHooks := integration.NewHooks(accountingService, mappingRepo, logger)

	redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB}
	jobClient, err := jobs.NewClient(redisOpts)
	if err != nil {
		logger.Error("init job client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(redisOpts)
	defer func() {
		_ = inspector.Close()
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		JournalHandler:     accounting.NewHandler(logger, accountingService),
		AccountsHandler:    accounts.NewHandler(logger, accountsService),
		MappingsHandler:    mappings.NewHandler(logger, mappingRepo),
		ReportsHandler:     reports.NewHandler(logger, reportsService),
		IntegrationHandler: integration.NewHandler(logger, integrationHooks),
		JobHandler:         jobs.NewHandler(inspector, jobClient, logger),
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:              cfg.AppAddr,
		Handler:           router,
		ReadTimeout:       cfg.AppReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.AppWriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", slog.String("addr", cfg.AppAddr), slog.String("cache", cfg.CacheBackend))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", slog.Any("error", err))
	}
	logger.Info("http server stopped")
}
