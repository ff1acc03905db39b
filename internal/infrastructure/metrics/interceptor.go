package metrics

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/status"
)

// requestSink receives per-call gRPC observations
type requestSink interface {
	RecordRequest(method string)
	RecordDuration(method string, durationSeconds float64)
	RecordError(method, code string)
}

// UnaryServerInterceptor returns a gRPC interceptor that records every call on the
// collector and, when set, the exporter.
func UnaryServerInterceptor(collector *Collector, exporter *PrometheusExporter) grpc.UnaryServerInterceptor {
	sinks := []requestSink{collector}
	if exporter != nil {
		sinks = append(sinks, exporter)
	}

	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		for _, s := range sinks {
			s.RecordRequest(info.FullMethod)
		}

		resp, err := handler(ctx, req)

		elapsed := time.Since(start).Seconds()
		for _, s := range sinks {
			s.RecordDuration(info.FullMethod, elapsed)
			if err != nil {
				s.RecordError(info.FullMethod, status.Code(err).String())
			}
		}
		return resp, err
	}
}
