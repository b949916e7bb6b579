package collector

import (
	"context"
	"sync"
	"time"

	"github.com/rustyeddy/autotrader/market"
)

// PriceCache holds recent quotes so repeated lookups skip the broker.
type PriceCache interface {
	Get(ctx context.Context, symbol string) (market.Price, bool)
	Set(ctx context.Context, p market.Price, ttl time.Duration)
}

type cacheEntry struct {
	price   market.Price
	expires time.Time
}

// MemoryCache is an in-process PriceCache. Entries are keyed
// "price:<symbol>" and dropped lazily once their TTL passes.
type MemoryCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

var _ PriceCache = (*MemoryCache)(nil)

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]cacheEntry), now: time.Now}
}

func cacheKey(symbol string) string { return "price:" + symbol }

func (c *MemoryCache) Get(_ context.Context, symbol string) (market.Price, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := cacheKey(symbol)
	e, ok := c.entries[k]
	if !ok {
		return market.Price{}, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, k)
		return market.Price{}, false
	}
	return e.price, true
}

func (c *MemoryCache) Set(_ context.Context, p market.Price, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(p.Symbol)] = cacheEntry{price: p, expires: c.now().Add(ttl)}
}

// Len returns the number of entries, expired ones included.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
