// Package cache provides the ports.Cache backends: an in-process TTL map
// (the default) and a Redis-backed cache selected by configuration.
package cache

import (
	"context"
	"sync"
	"time"
)

// cleanupInterval is how often the janitor sweeps expired entries
const cleanupInterval = time.Minute

// MemoryCache is a process-local cache with per-entry TTL
type MemoryCache struct {
	mu       sync.RWMutex
	items    map[string]memoryItem
	stop     chan struct{}
	stopOnce sync.Once
}

type memoryItem struct {
	value     interface{}
	expiresAt time.Time // zero means no expiry
}

// NewMemoryCache creates an empty cache and starts its cleanup goroutine
func NewMemoryCache() *MemoryCache {
	cache := &MemoryCache{
		items: make(map[string]memoryItem),
		stop:  make(chan struct{}),
	}
	go cache.janitor()
	return cache
}

// Get retrieves a value from cache
func (c *MemoryCache) Get(ctx context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	item, exists := c.items[key]
	if !exists {
		return nil, false
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		return nil, false
	}
	return item.value, true
}

// Set stores a value with a TTL in seconds; a TTL of zero or less means the
// entry never expires
func (c *MemoryCache) Set(ctx context.Context, key string, value interface{}, ttl int) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(time.Duration(ttl) * time.Second)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = memoryItem{value: value, expiresAt: expiresAt}
	return nil
}

// Delete removes a value from cache
func (c *MemoryCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, key)
	return nil
}

// Clear removes all values from cache
func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]memoryItem)
	return nil
}

// Stop terminates the cleanup goroutine. Safe to call more than once.
func (c *MemoryCache) Stop() {
	c.stopOnce.Do(func() {
		close(c.stop)
	})
}

// janitor periodically removes expired items so abandoned keys cannot
// accumulate between reads
func (c *MemoryCache) janitor() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.mu.Lock()
			now := time.Now()
			for key, item := range c.items {
				if !item.expiresAt.IsZero() && now.After(item.expiresAt) {
					delete(c.items, key)
				}
			}
			c.mu.Unlock()
		}
	}
}
