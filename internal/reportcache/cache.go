// Package reportcache stores computed financial reports keyed by tenant and
// report family so that postings can invalidate exactly what they affect.
package reportcache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// KeyNamespace prefixes every key written by this package.
const KeyNamespace = "erp:report:"

// DefaultTTL applies when no TTL is configured.
const DefaultTTL = 3 * time.Minute

// Family groups reports that are invalidated together.
type Family string

const (
	FamilyAccounting Family = "accounting"
	FamilySales      Family = "sales"
	FamilyPurchasing Family = "purchasing"
)

// Cache is the storage contract used by report services. Values are stored
// JSON-encoded; Get decodes into dst and reports whether the key was present.
type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Invalidate(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

// FamilyPrefix returns the key prefix shared by every report of a family for one company.
func FamilyPrefix(family Family, companyID int64) string {
	return fmt.Sprintf("%s%s:%d:", KeyNamespace, family, companyID)
}

// Key builds the cache key for a report. Params are hashed so that any
// filter combination yields a bounded key.
func Key(family Family, companyID int64, report string, params any) string {
	return FamilyPrefix(family, companyID) + report + ":" + digest(params)
}

// InvalidateFamilies drops every cached report of the given families for one company.
// All families are attempted; the first error is returned.
func InvalidateFamilies(ctx context.Context, cache Cache, companyID int64, families ...Family) error {
	if cache == nil {
		return nil
	}
	var firstErr error
	for _, family := range families {
		if err := cache.Invalidate(ctx, FamilyPrefix(family, companyID)); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("reportcache: invalidate %s: %w", family, err)
		}
	}
	return firstErr
}

func digest(params any) string {
	payload, err := json.Marshal(params)
	if err != nil {
		payload = []byte(fmt.Sprintf("%#v", params))
	}
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:12])
}
