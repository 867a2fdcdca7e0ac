package reportcache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// guardedCache stamps every Invalidate and Clear with a generation number so
// that a build started before an invalidation never stores its result after
// it. Writes hold the read lock across the generation check and the Set, and
// invalidation bumps the generation under the write lock before deleting.
type guardedCache struct {
	Cache

	mu          sync.RWMutex
	generation  uint64
	clearedAt   uint64
	invalidated map[string]uint64
}

func newGuardedCache(inner Cache) *guardedCache {
	return &guardedCache{Cache: inner, invalidated: make(map[string]uint64)}
}

// snapshot returns the generation a build must still observe when it stores.
func (g *guardedCache) snapshot() uint64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.generation
}

func (g *guardedCache) staleLocked(key string, since uint64) bool {
	if g.clearedAt > since {
		return true
	}
	for prefix, gen := range g.invalidated {
		if gen > since && strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// setIfCurrent stores value unless key was invalidated after since.
// It reports whether the value was written.
func (g *guardedCache) setIfCurrent(ctx context.Context, key string, value any, ttl time.Duration, since uint64) (bool, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.staleLocked(key, since) {
		return false, nil
	}
	return true, g.Cache.Set(ctx, key, value, ttl)
}

func (g *guardedCache) Invalidate(ctx context.Context, prefix string) error {
	g.mu.Lock()
	g.generation++
	g.invalidated[prefix] = g.generation
	g.mu.Unlock()
	return g.Cache.Invalidate(ctx, prefix)
}

func (g *guardedCache) Clear(ctx context.Context) error {
	g.mu.Lock()
	g.generation++
	g.clearedAt = g.generation
	clear(g.invalidated)
	g.mu.Unlock()
	return g.Cache.Clear(ctx)
}
