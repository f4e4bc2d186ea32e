package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

var _ Cache = (*MemoryCache)(nil)

type entry struct {
	value   []byte
	expires time.Time
}

// MemoryCache is an in-process Cache. Expired entries are hidden from Get
// immediately and removed by Get or by Sweep.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	hits    atomic.Uint64
	misses  atomic.Uint64
	now     func() time.Time
}

// NewMemoryCache returns an empty in-memory cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := c.now()

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return nil, false, nil
	}
	if !now.Before(e.expires) {
		c.mu.Lock()
		// Another goroutine may have refreshed the key since the read.
		if cur, ok := c.entries[key]; ok && !now.Before(cur.expires) {
			delete(c.entries, key)
		}
		c.mu.Unlock()
		c.misses.Add(1)
		return nil, false, nil
	}

	c.hits.Add(1)
	return e.value, true, nil
}

func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	// Copy so callers cannot mutate a stored value.
	v := make([]byte, len(value))
	copy(v, value)

	c.mu.Lock()
	c.entries[key] = entry{value: v, expires: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

func (c *MemoryCache) FlushAll(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	return nil
}

// Stats counts only live keys.
func (c *MemoryCache) Stats(_ context.Context) (Stats, error) {
	now := c.now()
	live := 0
	c.mu.RLock()
	for _, e := range c.entries {
		if now.Before(e.expires) {
			live++
		}
	}
	c.mu.RUnlock()

	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Keys:   live,
	}, nil
}

// Sweep removes expired entries and returns how many were removed.
func (c *MemoryCache) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for k, e := range c.entries {
		if !now.Before(e.expires) {
			delete(c.entries, k)
			removed++
		}
	}
	return removed
}
