package memorycache

import (
	"context"
	"testing"
	"time"
)

func TestCache_SetAndGet(t *testing.T) {
	c := New(&Config{MaxEntries: 10, DefaultTTL: time.Minute})
	ctx := context.Background()

	if err := c.Set(ctx, "key1", "value1", time.Minute); err != nil {
		t.Fatalf("failed to set value: %v", err)
	}

	value, found := c.Get(ctx, "key1")
	if !found {
		t.Error("expected to find key1")
	}
	if value != "value1" {
		t.Errorf("expected value1, got %v", value)
	}

	if _, found := c.Get(ctx, "nonexistent"); found {
		t.Error("expected not to find nonexistent key")
	}

	m := c.Metrics()
	if m.Hits != 1 || m.Misses != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %d and %d", m.Hits, m.Misses)
	}
	if m.HitRate() != 0.5 {
		t.Errorf("expected hit rate 0.5, got %v", m.HitRate())
	}
}

func TestCache_TTLExpiration(t *testing.T) {
	c := New(&Config{MaxEntries: 10, DefaultTTL: time.Minute})
	now := time.Now()
	c.now = func() time.Time { return now }
	ctx := context.Background()

	_ = c.Set(ctx, "short", "v", time.Second)
	_ = c.Set(ctx, "default", "v", 0)

	now = now.Add(2 * time.Second)
	if _, found := c.Get(ctx, "short"); found {
		t.Error("expected short to be expired")
	}
	if _, found := c.Get(ctx, "default"); !found {
		t.Error("expected default TTL entry to be present")
	}

	now = now.Add(time.Minute)
	if _, found := c.Get(ctx, "default"); found {
		t.Error("expected default TTL entry to be expired")
	}
	if c.Len() != 0 {
		t.Errorf("expected expired entries to be removed, got %d", c.Len())
	}
}

func TestCache_LRUEviction(t *testing.T) {
	c := New(&Config{MaxEntries: 2})
	ctx := context.Background()

	_ = c.Set(ctx, "a", 1, 0)
	_ = c.Set(ctx, "b", 2, 0)
	c.Get(ctx, "a") // a becomes most recently used
	_ = c.Set(ctx, "c", 3, 0)

	if _, found := c.Get(ctx, "b"); found {
		t.Error("expected b to be evicted")
	}
	if _, found := c.Get(ctx, "a"); !found {
		t.Error("expected a to survive eviction")
	}
	if got := c.Metrics().KeysEvicted; got != 1 {
		t.Errorf("expected 1 eviction, got %d", got)
	}
}

func TestCache_DeleteAndClear(t *testing.T) {
	c := New(&Config{MaxEntries: 10})
	ctx := context.Background()

	_ = c.Set(ctx, "a", 1, 0)
	_ = c.Set(ctx, "b", 2, 0)
	_ = c.Set(ctx, "a", 3, 0)

	if c.Len() != 2 {
		t.Errorf("expected 2 entries, got %d", c.Len())
	}
	if v, _ := c.Get(ctx, "a"); v != 3 {
		t.Errorf("expected updated value 3, got %v", v)
	}

	_ = c.Delete(ctx, "a")
	if _, found := c.Get(ctx, "a"); found {
		t.Error("expected a to be deleted")
	}

	_ = c.Clear(ctx)
	if c.Len() != 0 {
		t.Errorf("expected empty cache, got %d", c.Len())
	}
}
