// Package memorycache implements an in-process LRU cache with TTL support.
package memorycache

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/asakaida/datastore/pkg/cache"
)

var _ cache.Cache = (*Cache)(nil)

type entry struct {
	key       string
	value     any
	expiresAt time.Time
}

// Cache is an LRU cache bounded by entry count
type Cache struct {
	mu sync.Mutex

	items     map[string]*list.Element
	evictList *list.List // front = most recently used

	maxEntries int
	ttl        time.Duration
	now        func() time.Time

	metrics cache.Metrics
}

// Config holds configuration for the memory cache
type Config struct {
	// MaxEntries bounds the number of cached values; least recently used entries are evicted first.
	MaxEntries int

	// DefaultTTL applies when Set is called with a non-positive ttl.
	DefaultTTL time.Duration
}

// New creates a memory cache. A nil config selects the defaults.
func New(config *Config) *Cache {
	if config == nil {
		config = &Config{}
	}
	maxEntries := config.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1000
	}
	ttl := config.DefaultTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{
		items:      make(map[string]*list.Element),
		evictList:  list.New(),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// Get retrieves a value and marks it as recently used
func (c *Cache) Get(ctx context.Context, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.metrics.Misses++
		return nil, false
	}

	ent := elem.Value.(*entry)
	if c.now().After(ent.expiresAt) {
		c.removeElement(elem)
		c.metrics.Misses++
		return nil, false
	}

	c.evictList.MoveToFront(elem)
	c.metrics.Hits++
	return ent.value, true
}

// Set stores a value with the given TTL
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.now().Add(ttl)
	if elem, ok := c.items[key]; ok {
		ent := elem.Value.(*entry)
		ent.value = value
		ent.expiresAt = expiresAt
		c.evictList.MoveToFront(elem)
		return nil
	}

	c.items[key] = c.evictList.PushFront(&entry{key: key, value: value, expiresAt: expiresAt})
	c.metrics.KeysAdded++

	for c.evictList.Len() > c.maxEntries {
		c.removeElement(c.evictList.Back())
		c.metrics.KeysEvicted++
	}
	return nil
}

// Delete removes a value
func (c *Cache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		c.removeElement(elem)
	}
	return nil
}

// Clear removes all entries
func (c *Cache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element)
	c.evictList.Init()
	return nil
}

// Metrics returns a snapshot of cache statistics
func (c *Cache) Metrics() *cache.Metrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.metrics
	return &m
}

// Len returns the current number of entries, including expired ones not yet evicted
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

// removeElement must be called with the lock held
func (c *Cache) removeElement(elem *list.Element) {
	c.evictList.Remove(elem)
	delete(c.items, elem.Value.(*entry).key)
}
