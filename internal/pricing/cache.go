package pricing

import (
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry struct {
	price    float64
	storedAt time.Time
}

// quoteCache is a TTL-bounded LRU of mint prices. Prices go stale fast, so
// the TTL is short; the cache exists to absorb repeated backfills within a
// single run.
type quoteCache struct {
	ttl   time.Duration
	mu    sync.RWMutex
	store *lru.Cache[string, cacheEntry]
}

func newQuoteCache(maxEntries int, ttl time.Duration) *quoteCache {
	if maxEntries <= 0 {
		return nil
	}
	store, _ := lru.New[string, cacheEntry](maxEntries)
	return &quoteCache{ttl: ttl, store: store}
}

func (c *quoteCache) Get(mint string) (float64, bool) {
	if c == nil || mint == "" {
		return 0, false
	}
	c.mu.RLock()
	entry, ok := c.store.Get(mint)
	c.mu.RUnlock()
	if !ok {
		return 0, false
	}
	if c.ttl > 0 && time.Since(entry.storedAt) > c.ttl {
		c.mu.Lock()
		c.store.Remove(mint)
		c.mu.Unlock()
		return 0, false
	}
	return entry.price, true
}

func (c *quoteCache) Add(mint string, price float64) {
	if c == nil || mint == "" {
		return
	}
	c.mu.Lock()
	c.store.Add(mint, cacheEntry{price: price, storedAt: time.Now()})
	c.mu.Unlock()
}
