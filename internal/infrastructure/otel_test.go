package infrastructure

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nabii/internal/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestInitializeOTel(t *testing.T) {
	tests := []struct {
		name        string
		cfg         config.TelemetryConfig
		wantErr     bool
		wantTracing bool
		wantMetrics bool
	}{
		{
			name:        "prometheus metrics without tracing",
			cfg:         config.TelemetryConfig{ServiceName: "test", TraceExporter: "none", MetricExporter: "prometheus", SampleRatio: 1},
			wantMetrics: true,
		},
		{
			name:        "stdout tracing",
			cfg:         config.TelemetryConfig{ServiceName: "test", TraceExporter: "stdout", MetricExporter: "none", SampleRatio: 1},
			wantTracing: true,
		},
		{
			name: "everything disabled",
			cfg:  config.TelemetryConfig{ServiceName: "test", TraceExporter: "none", MetricExporter: "none"},
		},
		{
			name:    "unknown exporter",
			cfg:     config.TelemetryConfig{ServiceName: "test", TraceExporter: "jaeger"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			providers, err := InitializeOTel(tt.cfg, discardLogger())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			assert.NotNil(t, providers.Tracer)
			assert.NotNil(t, providers.Meter)
			assert.Equal(t, tt.wantTracing, providers.TracerProvider != nil)
			assert.Equal(t, tt.wantMetrics, providers.PrometheusHTTP != nil)

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			assert.NoError(t, providers.Shutdown(ctx))
		})
	}
}

func TestPipelineMetricsExposed(t *testing.T) {
	providers, err := InitializeOTel(config.TelemetryConfig{
		ServiceName:    "test",
		TraceExporter:  "none",
		MetricExporter: "prometheus",
	}, discardLogger())
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreatePipelineMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RunsTotal.Add(ctx, 1)
	metrics.RecordStep(ctx, "sdg", 10*time.Millisecond, nil)
	metrics.RecordStep(ctx, "country", 5*time.Millisecond, errors.New("disk full"))

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "pipeline_runs_total")
	assert.Contains(t, body, "pipeline_step_errors_total")
	assert.Contains(t, body, "pipeline_step_duration_seconds")
}

func TestRecordStepNilMetrics(t *testing.T) {
	var metrics *PipelineMetrics
	assert.NotPanics(t, func() {
		metrics.RecordStep(context.Background(), "sdg", time.Second, nil)
	})
}
