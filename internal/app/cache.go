package app

import (
	"context"
	"log/slog"

	"github.com/MarselKurniawan/erp-system/internal/platform/cache"
	"github.com/MarselKurniawan/erp-system/internal/reportcache"
)

// NewReportCache builds the report cache backend selected by CACHE_BACKEND.
// An unreachable Redis degrades to the in-process cache so reads keep
// working. The returned func releases backend resources.
func NewReportCache(ctx context.Context, cfg *Config, logger *slog.Logger) (reportcache.Cache, func()) {
	noop := func() {}
	if cfg == nil {
		return reportcache.Noop{}, noop
	}
	switch cfg.CacheBackend {
	case CacheBackendNone:
		return reportcache.Noop{}, noop
	case CacheBackendMemory:
		return reportcache.NewMemory(), noop
	}
	client, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		logger.Warn("redis unavailable, using in-memory report cache",
			slog.String("addr", cfg.RedisAddr), slog.Any("error", err))
		return reportcache.NewMemory(), noop
	}
	return reportcache.NewRedis(client), func() {
		if err := client.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}
}

// SharedReportCache reports whether c is visible to other processes. Only a
// shared backend lets the worker warm reports for the API.
func SharedReportCache(c reportcache.Cache) bool {
	_, ok := c.(*reportcache.Redis)
	return ok
}
