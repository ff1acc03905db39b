package metrics

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// testExporter is a shared exporter instance for all tests to avoid
// duplicate Prometheus metric registration errors.
var (
	testExporter     *PrometheusExporter
	testExporterOnce sync.Once
)

func getTestExporter(collector *Collector) *PrometheusExporter {
	testExporterOnce.Do(func() {
		testExporter = NewPrometheusExporter(collector)
	})
	return testExporter
}

func TestUnaryServerInterceptor(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		handlerErr  error
		calls       int
		useExporter bool
		wantErrors  uint64
		wantCode    string
	}{
		{
			name:   "success without exporter",
			method: "/datastore.v1.DataStoreService/Get",
			calls:  1,
		},
		{
			name:       "status error",
			method:     "/datastore.v1.DataStoreService/Attach",
			handlerErr: status.Error(codes.FailedPrecondition, "replace not allowed"),
			calls:      1,
			wantErrors: 1,
			wantCode:   "FailedPrecondition",
		},
		{
			name:        "multiple calls with exporter",
			method:      "/datastore.v1.DataStoreService/Detach",
			calls:       5,
			useExporter: true,
		},
		{
			name:        "error with exporter",
			method:      "/datastore.v1.DataStoreService/DetachByID",
			handlerErr:  status.Error(codes.InvalidArgument, "ids required"),
			calls:       2,
			useExporter: true,
			wantErrors:  2,
			wantCode:    "InvalidArgument",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			collector := NewCollector()
			var exporter *PrometheusExporter
			if tt.useExporter {
				exporter = getTestExporter(collector)
			}
			interceptor := UnaryServerInterceptor(collector, exporter)

			handler := func(ctx context.Context, req any) (any, error) {
				if tt.handlerErr != nil {
					return nil, tt.handlerErr
				}
				return "response", nil
			}
			info := &grpc.UnaryServerInfo{FullMethod: tt.method}

			for i := 0; i < tt.calls; i++ {
				_, err := interceptor(context.Background(), "request", info, handler)
				require.Equal(t, tt.handlerErr, err)
			}

			apiMetrics := collector.GetAPIMetrics()
			assert.Equal(t, uint64(tt.calls), apiMetrics.RequestCounts[tt.method])
			assert.Equal(t, tt.wantErrors, apiMetrics.ErrorCounts[tt.method])
			if tt.wantCode != "" {
				assert.Equal(t, map[string]uint64{tt.wantCode: tt.wantErrors}, apiMetrics.ErrorCodes[tt.method])
			} else {
				assert.Empty(t, apiMetrics.ErrorCodes[tt.method])
			}
			assert.Contains(t, apiMetrics.TotalDurationSeconds, tt.method)
		})
	}
}
