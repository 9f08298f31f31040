package cache

import (
	"context"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"

	"fyf-go/internal/fyf"
)

// sweepInterval is how often the background sweeper drops expired entries.
// Expired entries are also filtered on read, so the sweeper only bounds
// memory growth.
const sweepInterval = 30 * time.Second

type memEntry struct {
	value    []byte
	expireAt time.Time
}

func (e memEntry) expired(now time.Time) bool {
	return now.After(e.expireAt)
}

// MemoryCache is an in-process TTL cache backed by a sharded concurrent
// map. Safe for concurrent use.
type MemoryCache struct {
	data *xsync.MapOf[string, memEntry]
	stop chan struct{}

	hits   *metrics.Counter
	misses *metrics.Counter
}

// NewMemoryCache creates a MemoryCache and starts its expiry sweeper.
func NewMemoryCache() *MemoryCache {
	c := &MemoryCache{
		data:   xsync.NewMapOf[string, memEntry](),
		stop:   make(chan struct{}),
		hits:   metrics.GetOrCreateCounter(`fyf_cache_hits_total{cache="memory"}`),
		misses: metrics.GetOrCreateCounter(`fyf_cache_misses_total{cache="memory"}`),
	}
	go c.sweep()
	return c
}

func (c *MemoryCache) sweep() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case now := <-ticker.C:
			c.data.Range(func(key string, e memEntry) bool {
				if e.expired(now) {
					c.data.Delete(key)
				}
				return true
			})
		}
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	e, ok := c.data.Load(key)
	if !ok || e.expired(time.Now()) {
		c.misses.Inc()
		return nil, false, nil
	}
	c.hits.Inc()
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.data.Store(key, memEntry{value: value, expireAt: time.Now().Add(ttl)})
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, keys ...string) error {
	for _, key := range keys {
		c.data.Delete(key)
	}
	return nil
}

func (c *MemoryCache) DeletePrefix(_ context.Context, prefix string) error {
	c.data.Range(func(key string, _ memEntry) bool {
		if strings.HasPrefix(key, prefix) {
			c.data.Delete(key)
		}
		return true
	})
	return nil
}

// Close stops the expiry sweeper.
func (c *MemoryCache) Close() error {
	close(c.stop)
	return nil
}

// Compile-time check that MemoryCache implements the fyf.Cache interface
var _ fyf.Cache = (*MemoryCache)(nil)
