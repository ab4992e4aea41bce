// Package cache provides the process-wide read-through caches used by
// the external service clients. Entries are bounded in both lifetime
// (TTL) and count (LRU eviction), so a long-lived process cannot grow
// its caches without limit.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a size-bounded TTL cache. Concurrent readers and writers
// need no external coordination; for idempotent values last-write-wins
// population is acceptable.
type Cache[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// New creates a cache holding at most size entries, each valid for ttl.
// A ttl of zero disables expiry; entries then live until evicted.
func New[K comparable, V any](size int, ttl time.Duration) *Cache[K, V] {
	return &Cache[K, V]{
		lru: expirable.NewLRU[K, V](size, nil, ttl),
	}
}

// Get returns the cached value for key if present and unexpired.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Set stores value under key.
func (c *Cache[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int {
	return c.lru.Len()
}
