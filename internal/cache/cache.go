package cache

import (
	"context"
	"sync"
	"time"
)

// Cache is a bounded, TTL-aware cache keyed by string. It backs the
// compiled clause templates used by sqlstore.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]*entry[V]
	maxSize int
	ttl     time.Duration
	hits    int64
	misses  int64
}

type entry[V any] struct {
	value       V
	lastUsed    time.Time
	accessCount int64
}

// New creates a cache holding at most maxSize entries. A ttl of zero
// disables expiry.
func New[V any](maxSize int, ttl time.Duration) *Cache[V] {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache[V]{
		entries: make(map[string]*entry[V]),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Default returns a cache with 512 entries and a 10 minute TTL
func Default[V any]() *Cache[V] {
	return New[V](512, 10*time.Minute)
}

// Get returns the cached value for key if present and not expired
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		c.misses++
		return zero, false
	}
	if c.expired(e, time.Now()) {
		delete(c.entries, key)
		c.misses++
		return zero, false
	}

	e.lastUsed = time.Now()
	e.accessCount++
	c.hits++
	return e.value, true
}

// Put stores value under key, evicting the least recently used entry when full
func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		e.lastUsed = time.Now()
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictLRU()
	}

	c.entries[key] = &entry[V]{
		value:       value,
		lastUsed:    time.Now(),
		accessCount: 1,
	}
}

// GetOrCompute returns the cached value or stores the result of compute.
// Errors from compute are returned and nothing is cached.
func (c *Cache[V]) GetOrCompute(key string, compute func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return v, err
	}
	c.Put(key, v)
	return v, nil
}

// Len returns the number of entries currently held
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache[V]) expired(e *entry[V], now time.Time) bool {
	return c.ttl > 0 && now.Sub(e.lastUsed) > c.ttl
}

func (c *Cache[V]) evictLRU() {
	var oldestKey string
	var oldestTime time.Time
	first := true

	for key, e := range c.entries {
		if first || e.lastUsed.Before(oldestTime) {
			oldestKey = key
			oldestTime = e.lastUsed
			first = false
		}
	}

	if !first {
		delete(c.entries, oldestKey)
	}
}

// Cleanup drops expired entries
func (c *Cache[V]) Cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.entries {
		if c.expired(e, now) {
			delete(c.entries, key)
		}
	}
}

// StartCleanup runs Cleanup every interval until ctx is done
func (c *Cache[V]) StartCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Cleanup()
			}
		}
	}()
}

// Stats reports size, hit and miss counters
type Stats struct {
	Size   int
	Hits   int64
	Misses int64
}

// Stats returns a snapshot of the cache counters
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Stats{Size: len(c.entries), Hits: c.hits, Misses: c.misses}
}
