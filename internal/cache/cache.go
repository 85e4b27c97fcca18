// Package cache provides a small in-memory page cache used by the
// fetcher when re-running a config against a site that is not changing,
// e.g. while iterating on selectors.
package cache

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Cache defines the interface for response body caching.
type Cache interface {
	// Get retrieves a cached body by key.
	// Returns the body and a boolean indicating if the key was found.
	Get(key string) ([]byte, bool)

	// Set stores a body under key with the specified TTL.
	Set(key string, body []byte, ttl time.Duration)

	// Len returns the number of live entries.
	Len() int
}

type entry struct {
	body      []byte
	expiresAt time.Time
}

// MemoryCache is a TTL-bounded in-memory cache keyed by URL. Expired
// entries are dropped lazily on access; when the entry bound is hit,
// the oldest insertion is evicted.
type MemoryCache struct {
	mu         sync.Mutex
	store      map[string]entry
	order      []string
	maxEntries int
}

// NewMemoryCache creates a cache bounded to maxEntries entries.
func NewMemoryCache(maxEntries int) *MemoryCache {
	if maxEntries <= 0 {
		maxEntries = 256
	}
	return &MemoryCache{
		store:      make(map[string]entry),
		maxEntries: maxEntries,
	}
}

// Get retrieves a cached body, dropping it if expired.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.store[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(e.expiresAt) {
		c.remove(key)
		log.Debug().Str("key", key).Msg("Cache entry expired")
		return nil, false
	}
	return e.body, true
}

// Set stores a body, evicting the oldest entry if the cache is full.
func (c *MemoryCache) Set(key string, body []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.store[key]; !exists {
		if len(c.store) >= c.maxEntries && len(c.order) > 0 {
			oldest := c.order[0]
			c.remove(oldest)
			log.Debug().Str("key", oldest).Msg("Cache entry evicted")
		}
		c.order = append(c.order, key)
	}

	c.store[key] = entry{
		body:      body,
		expiresAt: time.Now().Add(ttl),
	}
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (c *MemoryCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.store)
}

// remove deletes key from both the store and the insertion order.
// Callers must hold c.mu.
func (c *MemoryCache) remove(key string) {
	delete(c.store, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
