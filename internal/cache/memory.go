package cache

import (
	"context"
	"sync"
	"time"

	"SRRStocks/internal/model"
)

// MemoryCache is a process-local TTL cache bounded by entry count.
// Thread-safe with sync.RWMutex.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]entry
	ttl        time.Duration
	maxEntries int
	nextIdx    int64
	now        func() time.Time
}

// NewMemory creates a MemoryCache with the given TTL and max entry count.
func NewMemory(ttl time.Duration, maxEntries int) *MemoryCache {
	return &MemoryCache{
		items:      make(map[string]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

func (c *MemoryCache) Name() string { return "memory" }

// Get returns a cached frame if found and not expired.
func (c *MemoryCache) Get(_ context.Context, key string) (*model.PriceFrame, bool) {
	c.mu.RLock()
	e, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}

	if c.now().After(e.expiry) {
		// Expired: remove lazily
		c.mu.Lock()
		if e2, ok2 := c.items[key]; ok2 && c.now().After(e2.expiry) {
			delete(c.items, key)
		}
		c.mu.Unlock()
		return nil, false
	}

	return e.frame, true
}

// Set stores a frame. Evicts the oldest entry if at capacity.
func (c *MemoryCache) Set(_ context.Context, key string, frame *model.PriceFrame) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[key]; !exists && c.maxEntries > 0 && len(c.items) >= c.maxEntries {
		c.evictOldest()
	}

	c.items[key] = entry{
		frame:     frame,
		expiry:    c.now().Add(c.ttl),
		insertIdx: c.nextIdx,
	}
	c.nextIdx++
}

// Purge drops expired entries and returns how many were removed.
func (c *MemoryCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	now := c.now()
	for k, e := range c.items {
		if now.After(e.expiry) {
			delete(c.items, k)
			n++
		}
	}
	return n
}

// Len returns the number of stored entries, expired or not.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// evictOldest must be called with mu held.
func (c *MemoryCache) evictOldest() {
	var oldestKey string
	oldestIdx := int64(-1)
	for k, e := range c.items {
		if oldestIdx < 0 || e.insertIdx < oldestIdx {
			oldestKey = k
			oldestIdx = e.insertIdx
		}
	}
	if oldestIdx >= 0 {
		delete(c.items, oldestKey)
	}
}
