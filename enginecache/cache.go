// Package enginecache bounds the reuse of expensive model-client and
// retrieval-engine handles. Each handle kind gets its own fixed-capacity
// LRU keyed by model identifier and generation parameters; lookup and
// construction are serialized so two concurrent requests for the same key
// share one handle instead of racing to build duplicates.
package enginecache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCapacity is the per-kind handle budget.
const DefaultCapacity = 4

// Key identifies one constructed handle.
type Key struct {
	Model       string
	Temperature float64
	NumCtx      int
}

// Cache memoizes handle construction with LRU eviction. Construction
// happens at most once per key while the key remains cached.
type Cache[V any] struct {
	mu    sync.Mutex
	lru   *lru.Cache[Key, V]
	build func(Key) (V, error)
}

// NewCache creates a cache with the given capacity around a builder.
func NewCache[V any](capacity int, build func(Key) (V, error)) (*Cache[V], error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	inner, err := lru.New[Key, V](capacity)
	if err != nil {
		return nil, err
	}
	return &Cache[V]{lru: inner, build: build}, nil
}

// Get returns the cached handle for key, constructing and inserting it on
// a miss. Failed constructions are not cached.
func (c *Cache[V]) Get(key Key) (V, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if v, ok := c.lru.Get(key); ok {
		return v, nil
	}
	v, err := c.build(key)
	if err != nil {
		var zero V
		return zero, err
	}
	c.lru.Add(key, v)
	return v, nil
}

// Len returns the number of cached handles.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Contains reports whether key is cached without updating recency.
func (c *Cache[V]) Contains(key Key) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Contains(key)
}
