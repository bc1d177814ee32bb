package aws

import (
	"sync"
	"time"
)

// ttlCache guards the Describe* lookups. Verification touches the same
// handful of resources from several concurrent checks; one description
// per resource per run is enough.
type ttlCache struct {
	mu       sync.RWMutex
	ttl      time.Duration
	capacity int
	data     map[string]cacheEntry
}

type cacheEntry struct {
	value    any
	expires  time.Time
	inserted time.Time
}

func newTTLCache(ttl time.Duration, capacity int) *ttlCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if capacity <= 0 {
		capacity = 500
	}
	return &ttlCache{
		ttl:      ttl,
		capacity: capacity,
		data:     make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) (any, bool) {
	c.mu.RLock()
	entry, ok := c.data[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.data, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.value, true
}

func (c *ttlCache) set(key string, value any) {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.data) >= c.capacity {
		c.evictOldest()
	}
	c.data[key] = cacheEntry{
		value:    value,
		expires:  now.Add(c.ttl),
		inserted: now,
	}
}

// evictOldest drops the least recently inserted entry. Callers hold
// the write lock.
func (c *ttlCache) evictOldest() {
	var oldestKey string
	var oldestTime time.Time
	first := true
	for k, v := range c.data {
		if first || v.inserted.Before(oldestTime) {
			oldestKey = k
			oldestTime = v.inserted
			first = false
		}
	}
	delete(c.data, oldestKey)
}
