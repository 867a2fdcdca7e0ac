package reportcache

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultBuildTimeout bounds a shared report build once it no longer
// follows the request that started it.
const DefaultBuildTimeout = 2 * time.Minute

// Loader reads reports through a Cache. Concurrent misses for the same key
// share one build, and cache failures fall through to the builder.
// Invalidations must go through Loader.Cache so that builds racing a posting
// do not store pre-posting results.
type Loader struct {
	cache   *guardedCache
	ttl     time.Duration
	metrics *Metrics
	logger  *slog.Logger
	group   singleflight.Group
}

// NewLoader constructs a Loader. A nil cache behaves like Noop.
func NewLoader(cache Cache, ttl time.Duration, metrics *Metrics, logger *slog.Logger) *Loader {
	if cache == nil {
		cache = Noop{}
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{cache: newGuardedCache(cache), ttl: ttl, metrics: metrics, logger: logger}
}

// Cache exposes the store for invalidation. Invalidate and Clear on the
// returned value also cancel the store step of builds already in flight.
func (l *Loader) Cache() Cache {
	return l.cache
}

// Load returns the cached value at key or builds, stores and returns it.
func Load[T any](ctx context.Context, l *Loader, key, report string, build func(context.Context) (T, error)) (T, error) {
	var cached T
	ok, err := l.cache.Get(ctx, key, &cached)
	switch {
	case err != nil:
		l.metrics.failure("get")
		l.logger.Warn("report cache read failed", slog.String("key", key), slog.Any("error", err))
	case ok:
		l.metrics.hit(report)
		return cached, nil
	}
	l.metrics.miss(report)

	generation := l.cache.snapshot()
	// The build is shared by every waiter on key, so it must not die with
	// the request that happened to start it.
	buildCtx := context.WithoutCancel(ctx)
	// Callers arriving after an invalidation start a fresh build instead of
	// joining one that may have read pre-invalidation data.
	flightKey := key + "#" + strconv.FormatUint(generation, 10)
	resultCh := l.group.DoChan(flightKey, func() (any, error) {
		buildCtx, cancel := context.WithTimeout(buildCtx, DefaultBuildTimeout)
		defer cancel()
		start := time.Now()
		value, err := build(buildCtx)
		l.metrics.observeBuild(report, time.Since(start))
		if err != nil {
			return nil, err
		}
		stored, err := l.cache.setIfCurrent(buildCtx, key, value, l.ttl, generation)
		switch {
		case err != nil:
			l.metrics.failure("set")
			l.logger.Warn("report cache write failed", slog.String("key", key), slog.Any("error", err))
		case !stored:
			l.logger.Debug("report invalidated during build, not cached", slog.String("key", key))
		}
		return value, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-resultCh:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}
