package gts

import (
	"sync"
	"time"
)

//simple in memory cache with TTL for upstream responses

type ResponseCache struct {
	entries map[string]*cacheEntry
	now     func() time.Time
	mutex   *sync.Mutex
}

type cacheEntry struct {
	value  []byte
	expiry time.Time
}

func NewResponseCache() *ResponseCache {
	cache := new(ResponseCache)
	cache.entries = make(map[string]*cacheEntry)
	cache.now = time.Now
	cache.mutex = new(sync.Mutex)

	return cache
}

func (c *ResponseCache) Get(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return nil, false
	}

	if entry.expiry.Before(c.now()) {
		delete(c.entries, key)
		return nil, false
	}

	return entry.value, true
}

// Put stores value for ttl; a ttl <= 0 is a no-op
func (c *ResponseCache) Put(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = &cacheEntry{
		value:  value,
		expiry: c.now().Add(ttl),
	}
}

func (c *ResponseCache) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}

func (c *ResponseCache) Destroy() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*cacheEntry)
}
