package metrics

// ManipulationRecorder forwards engine observations to the collector and, when set, the exporter.
type ManipulationRecorder struct {
	collector *Collector
	exporter  *PrometheusExporter
}

// NewManipulationRecorder creates a recorder; exporter may be nil
func NewManipulationRecorder(collector *Collector, exporter *PrometheusExporter) *ManipulationRecorder {
	return &ManipulationRecorder{collector: collector, exporter: exporter}
}

// RecordManipulation records one attach or detach call
func (r *ManipulationRecorder) RecordManipulation(operation, kind, outcome string) {
	r.collector.RecordManipulation(operation, kind, outcome)
	if r.exporter != nil {
		r.exporter.RecordManipulation(operation, kind, outcome)
	}
}
