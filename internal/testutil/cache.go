package testutil

import (
	"testing"

	"fyf-go/internal/cache"
)

// NewTestCache creates an in-memory cache that is closed when the test
// completes.
func NewTestCache(t *testing.T) *cache.MemoryCache {
	t.Helper()

	c := cache.NewMemoryCache()
	t.Cleanup(func() {
		c.Close()
	})
	return c
}
