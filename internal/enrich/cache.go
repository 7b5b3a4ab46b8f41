package enrich

import (
	"context"
	"sync"
	"time"
)

// Cache memoizes NormalizeMerchant results by their content key, the raw
// merchant string. Entries are safe to share read-only across concurrent
// callers; expired entries are refreshed lazily. ClassifyVariable passes
// through uncached because its input varies per detection window.
type Cache struct {
	inner Enricher
	ttl   time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	now func() time.Time
}

type cacheEntry struct {
	merchant string
	storedAt time.Time
}

// NewCache wraps inner with a TTL cache. ttl <= 0 means entries never
// expire for the life of the process.
func NewCache(inner Enricher, ttl time.Duration) *Cache {
	return &Cache{
		inner:   inner,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		now:     time.Now,
	}
}

// NormalizeMerchant implements Enricher.
func (c *Cache) NormalizeMerchant(ctx context.Context, raw string) (string, error) {
	c.mu.RLock()
	entry, ok := c.entries[raw]
	c.mu.RUnlock()
	if ok && !c.expired(entry) {
		return entry.merchant, nil
	}

	merchant, err := c.inner.NormalizeMerchant(ctx, raw)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.entries[raw] = cacheEntry{merchant: merchant, storedAt: c.now()}
	c.mu.Unlock()
	return merchant, nil
}

// ClassifyVariable implements Enricher.
func (c *Cache) ClassifyVariable(ctx context.Context, merchant string, amounts []float64) (bool, error) {
	return c.inner.ClassifyVariable(ctx, merchant, amounts)
}

// Clear drops all cached entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]cacheEntry)
	c.mu.Unlock()
}

func (c *Cache) expired(e cacheEntry) bool {
	if c.ttl <= 0 {
		return false
	}
	return c.now().Sub(e.storedAt) > c.ttl
}
