package metrics

import (
	"sync"

	"github.com/asakaida/datastore/pkg/cache"
	"github.com/asakaida/datastore/pkg/cache/memorycache"
)

// Collector aggregates request, manipulation and cache metrics in memory.
// It backs tests and diagnostics; PrometheusExporter publishes the same events.
type Collector struct {
	mu            sync.Mutex
	methods       map[string]*methodStats
	manipulations map[ManipulationKey]uint64

	// Cache reference (optional, for querying cache-specific metrics)
	cache cache.Cache
}

type methodStats struct {
	requests     uint64
	errors       map[string]uint64 // status code -> count
	totalSeconds float64
}

// CacheMetrics holds include cache metrics.
type CacheMetrics struct {
	Hits        uint64
	Misses      uint64
	HitRate     float64
	KeysCurrent int64
	Evictions   uint64
}

// APIMetrics holds API request metrics keyed by full gRPC method.
type APIMetrics struct {
	RequestCounts        map[string]uint64
	ErrorCounts          map[string]uint64
	ErrorCodes           map[string]map[string]uint64
	TotalDurationSeconds map[string]float64
}

// ManipulationKey identifies one manipulation counter.
type ManipulationKey struct {
	Operation string // attach, detach
	Kind      string // relation kind, or "unknown" when the relation did not resolve
	Outcome   string // success, failed, error
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		methods:       make(map[string]*methodStats),
		manipulations: make(map[ManipulationKey]uint64),
	}
}

// SetCache sets the cache instance for collecting cache metrics.
func (c *Collector) SetCache(cache cache.Cache) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache = cache
}

// RecordRequest records an API request.
func (c *Collector) RecordRequest(method string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.method(method).requests++
}

// RecordError records a failed API call with its status code.
func (c *Collector) RecordError(method, code string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.method(method).errors[code]++
}

// RecordDuration records the duration of an API call in seconds.
func (c *Collector) RecordDuration(method string, durationSeconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.method(method).totalSeconds += durationSeconds
}

// RecordManipulation records one engine call.
func (c *Collector) RecordManipulation(operation, kind, outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.manipulations[ManipulationKey{Operation: operation, Kind: kind, Outcome: outcome}]++
}

// method returns the stats of a method; c.mu must be held
func (c *Collector) method(name string) *methodStats {
	s, ok := c.methods[name]
	if !ok {
		s = &methodStats{errors: make(map[string]uint64)}
		c.methods[name] = s
	}
	return s
}

// GetCacheMetrics returns current cache metrics.
func (c *Collector) GetCacheMetrics() *CacheMetrics {
	c.mu.Lock()
	current := c.cache
	c.mu.Unlock()

	if current == nil {
		return &CacheMetrics{}
	}
	m := current.Metrics()
	if m == nil {
		return &CacheMetrics{}
	}

	result := &CacheMetrics{
		Hits:      m.Hits,
		Misses:    m.Misses,
		HitRate:   m.HitRate(),
		Evictions: m.KeysEvicted,
	}
	if memCache, ok := current.(*memorycache.Cache); ok {
		result.KeysCurrent = int64(memCache.Len())
	}
	return result
}

// GetAPIMetrics returns a snapshot of the API metrics.
func (c *Collector) GetAPIMetrics() *APIMetrics {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := &APIMetrics{
		RequestCounts:        make(map[string]uint64, len(c.methods)),
		ErrorCounts:          make(map[string]uint64, len(c.methods)),
		ErrorCodes:           make(map[string]map[string]uint64, len(c.methods)),
		TotalDurationSeconds: make(map[string]float64, len(c.methods)),
	}
	for name, s := range c.methods {
		result.RequestCounts[name] = s.requests
		result.TotalDurationSeconds[name] = s.totalSeconds

		codes := make(map[string]uint64, len(s.errors))
		var total uint64
		for code, n := range s.errors {
			codes[code] = n
			total += n
		}
		result.ErrorCounts[name] = total
		result.ErrorCodes[name] = codes
	}
	return result
}

// GetManipulationMetrics returns manipulation counts keyed by operation, kind and outcome.
func (c *Collector) GetManipulationMetrics() map[ManipulationKey]uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := make(map[ManipulationKey]uint64, len(c.manipulations))
	for k, v := range c.manipulations {
		result[k] = v
	}
	return result
}
