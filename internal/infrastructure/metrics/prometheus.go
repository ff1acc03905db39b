package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusExporter exports metrics to Prometheus format.
type PrometheusExporter struct {
	collector *Collector

	// Prometheus metrics
	cacheHitRate  prometheus.Gauge
	cacheKeys     prometheus.Gauge
	cacheHits     prometheus.Gauge
	cacheMisses   prometheus.Gauge
	cacheEvicted  prometheus.Gauge
	manipulations *prometheus.CounterVec
	grpcRequests  *prometheus.CounterVec
	grpcDuration  *prometheus.HistogramVec
	grpcErrors    *prometheus.CounterVec
}

// NewPrometheusExporter creates a new Prometheus exporter registered with the default registry.
func NewPrometheusExporter(collector *Collector) *PrometheusExporter {
	return &PrometheusExporter{
		collector: collector,
		cacheHitRate: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "datastore_include_cache_hit_rate",
			Help: "Current include cache hit rate (0.0 to 1.0)",
		}),
		cacheKeys: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "datastore_include_cache_keys_current",
			Help: "Current number of keys in the include cache",
		}),
		cacheHits: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "datastore_include_cache_hits",
			Help: "Include cache hits since start",
		}),
		cacheMisses: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "datastore_include_cache_misses",
			Help: "Include cache misses since start",
		}),
		cacheEvicted: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "datastore_include_cache_evictions",
			Help: "Include cache evictions since start",
		}),
		manipulations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_relationship_manipulations_total",
				Help: "Total number of relationship manipulations by operation, relation kind and outcome",
			},
			[]string{"operation", "kind", "outcome"},
		),
		grpcRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method"},
		),
		grpcDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "datastore_grpc_request_duration_seconds",
				Help:    "Duration of gRPC requests in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
			},
			[]string{"method"},
		),
		grpcErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "datastore_grpc_errors_total",
				Help: "Total number of gRPC errors by status code",
			},
			[]string{"method", "code"},
		),
	}
}

// Update updates Gauge metrics from the collector.
// Counters are updated as events happen, so only gauges are refreshed here.
// This should be called periodically (e.g., every 10 seconds).
func (e *PrometheusExporter) Update() {
	cacheMetrics := e.collector.GetCacheMetrics()
	e.cacheHitRate.Set(cacheMetrics.HitRate)
	e.cacheKeys.Set(float64(cacheMetrics.KeysCurrent))
	e.cacheHits.Set(float64(cacheMetrics.Hits))
	e.cacheMisses.Set(float64(cacheMetrics.Misses))
	e.cacheEvicted.Set(float64(cacheMetrics.Evictions))
}

// RecordRequest records a request in Prometheus.
func (e *PrometheusExporter) RecordRequest(method string) {
	e.grpcRequests.WithLabelValues(method).Inc()
}

// RecordDuration records a duration in Prometheus.
func (e *PrometheusExporter) RecordDuration(method string, durationSeconds float64) {
	e.grpcDuration.WithLabelValues(method).Observe(durationSeconds)
}

// RecordError records an error in Prometheus.
func (e *PrometheusExporter) RecordError(method, code string) {
	e.grpcErrors.WithLabelValues(method, code).Inc()
}

// RecordManipulation records one engine call in Prometheus.
func (e *PrometheusExporter) RecordManipulation(operation, kind, outcome string) {
	e.manipulations.WithLabelValues(operation, kind, outcome).Inc()
}
