// Package cache keeps recently scraped profile statistics in memory so the
// stats API does not refetch a page on every request.
package cache

import (
	"sync"
	"time"
)

// MemoryCache is an in-memory cache with a fixed TTL per entry
type MemoryCache[V any] struct {
	data  map[string]entry[V]
	mutex sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	stop  chan struct{}
	once  sync.Once
}

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewMemoryCache creates a cache whose entries live for ttl. A background
// sweep removes expired entries every minute until Close is called.
func NewMemoryCache[V any](ttl time.Duration) *MemoryCache[V] {
	return newMemoryCache[V](ttl, time.Now)
}

func newMemoryCache[V any](ttl time.Duration, now func() time.Time) *MemoryCache[V] {
	c := &MemoryCache[V]{
		data: make(map[string]entry[V]),
		ttl:  ttl,
		now:  now,
		stop: make(chan struct{}),
	}

	go c.sweepEvery(time.Minute)

	return c
}

// Get retrieves a live value from the cache
func (c *MemoryCache[V]) Get(key string) (V, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	item, exists := c.data[key]
	if !exists || c.now().After(item.expiresAt) {
		var zero V
		return zero, false
	}

	return item.value, true
}

// Set stores a value in the cache
func (c *MemoryCache[V]) Set(key string, value V) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.data[key] = entry[V]{
		value:     value,
		expiresAt: c.now().Add(c.ttl),
	}
}

// Delete removes a key from the cache
func (c *MemoryCache[V]) Delete(key string) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.data, key)
}

// Close stops the background sweep
func (c *MemoryCache[V]) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *MemoryCache[V]) sweepEvery(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stop:
			return
		}
	}
}

// sweep removes expired items from the cache
func (c *MemoryCache[V]) sweep() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	now := c.now()
	for key, item := range c.data {
		if now.After(item.expiresAt) {
			delete(c.data, key)
		}
	}
}

// Stats returns cache statistics
func (c *MemoryCache[V]) Stats() map[string]int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	total := len(c.data)
	expired := 0
	now := c.now()

	for _, item := range c.data {
		if now.After(item.expiresAt) {
			expired++
		}
	}

	return map[string]int{
		"total":   total,
		"active":  total - expired,
		"expired": expired,
	}
}
