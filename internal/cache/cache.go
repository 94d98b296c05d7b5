package cache

import (
	"sync"
	"time"
)

// TTL bounds for the data sources the dashboard caches. Operational data
// turns over quickly; analytical KPIs can sit for over an hour.
const (
	TTLOperational = 120 * time.Second
	TTLOrders      = 15 * time.Minute
	TTLAnalytical  = 1 * time.Hour
	TTLKPI         = 4800 * time.Second
)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL result cache keyed by a data source's input identifier
// (saved-search id, query text). Entries are immutable within their TTL.
type Cache[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	now     func() time.Time
}

func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[key]
	if !ok || c.now().After(e.expiresAt) {
		var zero V
		return zero, false
	}
	return e.value, true
}

func (c *Cache[V]) Put(key string, value V) {
	c.mu.Lock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// GetOrFill returns the cached value or runs fill once and caches the result.
// Fill errors are not cached.
func (c *Cache[V]) GetOrFill(key string, fill func() (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fill()
	if err != nil {
		var zero V
		return zero, err
	}
	c.Put(key, v)
	return v, nil
}

// Invalidate drops a single entry before its TTL lapses.
func (c *Cache[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
}
