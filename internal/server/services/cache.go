package services

import (
	"sync"
	"time"
)

// ListCache caches decrypted list results per owner. Every mutating vault
// operation calls Invalidate for the owner before the write is acknowledged,
// so an acknowledged write is never followed by a stale read.
type ListCache struct {
	mu    sync.Mutex
	ttl   time.Duration
	items map[string]cacheItem
}

type cacheItem struct {
	views   []*EntryView
	expires time.Time
}

func NewListCache(ttl time.Duration) *ListCache {
	return &ListCache{
		ttl:   ttl,
		items: make(map[string]cacheItem),
	}
}

// Get returns the cached list for ownerID if present and not expired.
func (c *ListCache) Get(ownerID string) ([]*EntryView, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[ownerID]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expires) {
		delete(c.items, ownerID)
		return nil, false
	}
	return item.views, true
}

func (c *ListCache) Set(ownerID string, views []*EntryView) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[ownerID] = cacheItem{views: views, expires: time.Now().Add(c.ttl)}
}

func (c *ListCache) Invalidate(ownerID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, ownerID)
}
