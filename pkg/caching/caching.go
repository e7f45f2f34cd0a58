// Package caching wraps a ContentStore with an in-memory LRU cache whose
// entries expire after a TTL.
package caching

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dtnitsch/mooc-renderer/models"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"
)

// Cache is a caching models.ContentStore. Missing pages are not cached, so a
// page created after a lookup is seen on the next fetch.
type Cache struct {
	next   models.ContentStore
	lru    *expirable.LRU[models.Identifier, string]
	group  singleflight.Group
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats counts cache lookups.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// NewCache wraps next. A size <= 0 means unbounded and a ttl <= 0 disables
// expiry.
func NewCache(next models.ContentStore, size int, ttl time.Duration) *Cache {
	return &Cache{
		next: next,
		lru:  expirable.NewLRU[models.Identifier, string](size, nil, ttl),
	}
}

// Fetch implements models.ContentStore. Concurrent fetches of the same
// identifier share one call to the wrapped store.
func (c *Cache) Fetch(ctx context.Context, id models.Identifier) (string, error) {
	if text, ok := c.lru.Get(id); ok {
		c.hits.Add(1)
		return text, nil
	}
	c.misses.Add(1)

	v, err, _ := c.group.Do(string(id), func() (any, error) {
		text, err := c.next.Fetch(ctx, id)
		if err != nil {
			return "", err
		}
		c.lru.Add(id, text)
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Unwrap returns the wrapped store.
func (c *Cache) Unwrap() models.ContentStore {
	return c.next
}

// Invalidate drops id from the cache.
func (c *Cache) Invalidate(id models.Identifier) {
	c.lru.Remove(id)
}

// Purge drops every cached page.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.lru.Len(),
	}
}
