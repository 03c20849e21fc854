package countries

import (
	"sync"

	gocache "github.com/patrickmn/go-cache"
)

// DatasetCache is a process-lifetime memoize keyed by dataset identifier
// (a country code scoped by dataset kind, or a list variant such as
// "shortlist"). Entries never expire and are never re-validated against the
// byte source; replacement happens wholesale through Invalidate.
//
// The check-then-populate sequence runs under a single mutex, so concurrent
// misses on the same identifier perform the underlying load once. Loads are
// synchronous bounded reads of immutable data, which keeps holding the lock
// across the loader acceptable.
type DatasetCache struct {
	mu    sync.Mutex
	store *gocache.Cache
}

// NewDatasetCache returns an empty cache. Every Service owns one; tests
// construct their own to isolate state deterministically.
func NewDatasetCache() *DatasetCache {
	return &DatasetCache{store: gocache.New(gocache.NoExpiration, 0)}
}

// Load returns the cached structure for id, invoking loader on the first
// miss and storing its result. Repeat calls return the identical reference
// until invalidation. Loader failures are not cached: a later Load with the
// same id retries instead of replaying the error.
func (c *DatasetCache) Load(id string, loader func() (any, error)) (any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.store.Get(id); ok {
		return v, nil
	}
	v, err := loader()
	if err != nil {
		return nil, err
	}
	c.store.Set(id, v, gocache.NoExpiration)
	return v, nil
}

// Contains reports whether id currently has a populated entry.
func (c *DatasetCache) Contains(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.store.Get(id)
	return ok
}

// Invalidate removes a single entry. The next Load for id hits the loader.
func (c *DatasetCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Delete(id)
}

// InvalidateAll clears every entry.
func (c *DatasetCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Flush()
}
