// Package cache implements a cache-aside layer keyed by request parameters.
package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize bounds the number of cached responses.
const DefaultSize = 256

// Cache stores loader results under string keys built with Key.
type Cache[V any] struct {
	mu      sync.Mutex
	entries *lru.Cache[string, V]
	hits    int
	misses  int
	// gen advances on Invalidate and Purge; a load that spans a change is not stored.
	gen uint64
}

// New creates a cache holding at most size entries.
func New[V any](size int) (*Cache[V], error) {
	if size <= 0 {
		size = DefaultSize
	}
	entries, err := lru.New[string, V](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}
	return &Cache[V]{entries: entries}, nil
}

// Key joins a resource name and its request parameters, e.g. "results|SCY|100free".
func Key(resource string, params ...any) string {
	var b strings.Builder
	b.WriteString(resource)
	for _, p := range params {
		b.WriteByte('|')
		fmt.Fprint(&b, p)
	}
	return b.String()
}

// GetOrLoad returns the cached value for key or calls load and caches its result.
// Errors are not cached.
func (c *Cache[V]) GetOrLoad(ctx context.Context, key string, load func(context.Context) (V, error)) (V, error) {
	c.mu.Lock()
	if v, ok := c.entries.Get(key); ok {
		c.hits++
		c.mu.Unlock()
		return v, nil
	}
	c.misses++
	gen := c.gen
	c.mu.Unlock()

	v, err := load(ctx)
	if err != nil {
		var zero V
		return zero, err
	}
	c.mu.Lock()
	if c.gen == gen {
		c.entries.Add(key, v)
	}
	c.mu.Unlock()
	return v, nil
}

// Invalidate drops every entry whose key starts with prefix.
func (c *Cache[V]) Invalidate(prefix string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	removed := 0
	for _, key := range c.entries.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.entries.Remove(key)
			removed++
		}
	}
	return removed
}

// Purge drops every entry.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries.Purge()
}

// Stats returns hit and miss counts.
func (c *Cache[V]) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
