package source

import (
	"sync"
	"time"
)

type cacheEntry struct {
	payload   string
	expiresAt time.Time
}

// TTLCache is a thread-safe payload cache with TTL support. The loader
// consults it so repeated refreshes inside a source's update interval
// reuse the fetched list instead of refetching.
type TTLCache struct {
	items map[string]cacheEntry
	mu    sync.RWMutex
	stop  chan struct{}
}

// NewTTLCache creates a new cache and starts the cleanup goroutine.
func NewTTLCache() *TTLCache {
	c := &TTLCache{
		items: make(map[string]cacheEntry),
		stop:  make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Set stores a payload under key for the given TTL.
func (c *TTLCache) Set(key, payload string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[key] = cacheEntry{
		payload:   payload,
		expiresAt: time.Now().Add(ttl),
	}
}

// Get returns the payload for key if present and not expired.
func (c *TTLCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.items[key]
	if !ok || time.Now().After(entry.expiresAt) {
		return "", false
	}
	return entry.payload, true
}

// Stop terminates the cleanup goroutine.
func (c *TTLCache) Stop() {
	close(c.stop)
}

func (c *TTLCache) cleanupLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.mu.Lock()
			for k, entry := range c.items {
				if now.After(entry.expiresAt) {
					delete(c.items, k)
				}
			}
			c.mu.Unlock()
		case <-c.stop:
			return
		}
	}
}
