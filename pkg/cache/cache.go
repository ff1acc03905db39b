// Package cache defines the cache used for derived, read-mostly data
// such as resolved include trees.
package cache

import (
	"context"
	"time"
)

// Cache stores values by key with a time-to-live.
// A ttl of zero or less selects the implementation's default.
type Cache interface {
	// Get returns the value and true if the key is present and not expired
	Get(ctx context.Context, key string) (any, bool)

	// Set stores a value
	Set(ctx context.Context, key string, value any, ttl time.Duration) error

	// Delete removes a value
	Delete(ctx context.Context, key string) error

	// Clear removes all entries
	Clear(ctx context.Context) error

	// Metrics returns cache statistics
	Metrics() *Metrics
}

// Metrics holds cache statistics
type Metrics struct {
	Hits        uint64
	Misses      uint64
	KeysAdded   uint64
	KeysEvicted uint64
}

// HitRate returns the cache hit rate (0.0 to 1.0)
func (m *Metrics) HitRate() float64 {
	total := m.Hits + m.Misses
	if total == 0 {
		return 0.0
	}
	return float64(m.Hits) / float64(total)
}

// Noop is a Cache that stores nothing, used when caching is disabled
type Noop struct{}

func (Noop) Get(context.Context, string) (any, bool) { return nil, false }
func (Noop) Set(context.Context, string, any, time.Duration) error { return nil }
func (Noop) Delete(context.Context, string) error { return nil }
func (Noop) Clear(context.Context) error { return nil }
func (Noop) Metrics() *Metrics { return &Metrics{} }
