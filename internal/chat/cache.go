package chat

import (
	"sync"
	"time"
)

// ttlCache is a small expiring map. An entry older than the cache's TTL reads
// as absent, never as a stale value.
type ttlCache struct {
	mu    sync.RWMutex
	ttl   time.Duration
	items map[string]cacheItem

	now func() time.Time
}

type cacheItem struct {
	value    interface{}
	storedAt time.Time
}

func newTTLCache(ttl time.Duration) *ttlCache {
	return &ttlCache{
		ttl:   ttl,
		items: make(map[string]cacheItem),
		now:   time.Now,
	}
}

// Get retrieves a live value from the cache
func (c *ttlCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}

	if c.now().Sub(item.storedAt) > c.ttl {
		return nil, false
	}

	return item.value, true
}

// Set stores a value, resetting its TTL
func (c *ttlCache) Set(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cacheItem{
		value:    value,
		storedAt: c.now(),
	}
}

// Delete removes a value from the cache
func (c *ttlCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *ttlCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]cacheItem)
}

// Mutate applies fn to every live entry, replacing each value with fn's
// result. Expired entries are dropped along the way.
func (c *ttlCache) Mutate(fn func(value interface{}) interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, item := range c.items {
		if now.Sub(item.storedAt) > c.ttl {
			delete(c.items, key)
			continue
		}
		item.value = fn(item.value)
		c.items[key] = item
	}
}
