// Package cache provides a TTL-bounded LRU cache used to memoize QA
// answers across sessions.
package cache

import (
	"container/list"
	"context"
	"strings"
	"sync"
	"time"
)

// CacheService is the cache contract consumed by the QA orchestrator.
type CacheService interface {
	// Get retrieves a value. Returns the value and whether it exists.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores a value with the given ttl; ttl <= 0 uses the default.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Invalidate removes entries. A trailing * invalidates by prefix,
	// e.g. "qa:*" drops every cached answer.
	Invalidate(ctx context.Context, pattern string) error
}

// item is one cached value with its LRU list position.
type item struct {
	key       string
	value     []byte
	expiresAt time.Time
	element   *list.Element
}

// lru is the locked LRU+TTL core.
type lru struct {
	mu         sync.Mutex
	capacity   int
	defaultTTL time.Duration
	items      map[string]*item
	order      *list.List
}

func newLRU(capacity int, defaultTTL time.Duration) *lru {
	return &lru{
		capacity:   capacity,
		defaultTTL: defaultTTL,
		items:      make(map[string]*item),
		order:      list.New(),
	}
}

func (c *lru) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it, ok := c.items[key]
	if !ok {
		return nil, false
	}
	if time.Now().After(it.expiresAt) {
		c.remove(it)
		return nil, false
	}
	c.order.MoveToFront(it.element)
	return it.value, true
}

func (c *lru) set(key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if it, ok := c.items[key]; ok {
		it.value = value
		it.expiresAt = time.Now().Add(ttl)
		c.order.MoveToFront(it.element)
		return
	}

	for len(c.items) >= c.capacity {
		oldest := c.order.Back()
		if oldest == nil {
			break
		}
		c.remove(oldest.Value.(*item))
	}

	it := &item{key: key, value: value, expiresAt: time.Now().Add(ttl)}
	it.element = c.order.PushFront(it)
	c.items[key] = it
}

func (c *lru) invalidate(pattern string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !strings.HasSuffix(pattern, "*") {
		if it, ok := c.items[pattern]; ok {
			c.remove(it)
			return 1
		}
		return 0
	}

	prefix := strings.TrimSuffix(pattern, "*")
	count := 0
	for key, it := range c.items {
		if strings.HasPrefix(key, prefix) {
			c.remove(it)
			count++
		}
	}
	return count
}

func (c *lru) cleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var stale []*item
	for _, it := range c.items {
		if now.After(it.expiresAt) {
			stale = append(stale, it)
		}
	}
	for _, it := range stale {
		c.remove(it)
	}
	return len(stale)
}

func (c *lru) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// remove must be called with the lock held.
func (c *lru) remove(it *item) {
	c.order.Remove(it.element)
	delete(c.items, it.key)
}
