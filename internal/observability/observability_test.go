package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	noopmetric "go.opentelemetry.io/otel/metric/noop"

	"github.com/filescope/filescope/internal/observability"
)

func TestInit_NoEndpoint_NoopProviders(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = "1.0.0"
	cfg.Environment = "test"

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	require.NotNil(t, providers.Tracer)
	require.NotNil(t, providers.Meter)
	require.NotNil(t, providers.Logger)
	require.NotNil(t, providers.Shutdown)

	ctx, span := providers.Tracer.Start(context.Background(), "noop-op")
	assert.False(t, span.SpanContext().IsValid())
	span.End()

	providers.Logger.InfoContext(ctx, "startup")

	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestDefaultConfig_Values(t *testing.T) {
	t.Parallel()

	cfg := observability.DefaultConfig()

	assert.Equal(t, "filescope", cfg.ServiceName)
	assert.Equal(t, observability.ModeCLI, cfg.Mode)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.OTLPEndpoint)
}

func TestTracingHandler_AttachesServiceMetadata(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	handler := observability.NewTracingHandler(inner, "filescope", "staging", observability.ModeMCP)

	logger := slog.New(handler)
	logger.Info("hello", "key", "value")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	assert.Equal(t, "filescope", record["service"])
	assert.Equal(t, "staging", record["env"])
	assert.Equal(t, "mcp", record["mode"])
	assert.Equal(t, "value", record["key"])
	assert.NotContains(t, record, "trace_id")
}

func TestTracingHandler_WithGroup(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	inner := slog.NewJSONHandler(&buf, nil)
	handler := observability.NewTracingHandler(inner, "filescope", "", observability.ModeCLI)

	logger := slog.New(handler).WithGroup("req").With("id", 42)
	logger.Info("done")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))

	// Service metadata stays at the top level, grouped attrs nest.
	assert.Equal(t, "filescope", record["service"])

	group, ok := record["req"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 42, group["id"])
}

func TestNewREDMetrics_RecordsWithoutError(t *testing.T) {
	t.Parallel()

	meter := noopmetric.NewMeterProvider().Meter("test")

	red, err := observability.NewREDMetrics(meter)
	require.NoError(t, err)

	ctx := context.Background()

	done := red.TrackInflight(ctx, "analyze_file")
	red.RecordRequest(ctx, "analyze_file", "ok", 15*time.Millisecond)
	red.RecordRequest(ctx, "analyze_file", "error", 3*time.Millisecond)
	done()
}

func TestHealthHandler_ReturnsOK(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)

	observability.HealthHandler("filescope").ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "filescope", status["service"])
}

func TestReadyHandler_AllChecksPass(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	checks := map[string]observability.ReadyCheck{
		"config": func() error { return nil },
	}
	observability.ReadyHandler("filescope", checks).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "ready", status["status"])
}

func TestReadyHandler_FailingCheck_Returns503(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)

	checks := map[string]observability.ReadyCheck{
		"storage": func() error { return errors.New("disk offline") },
	}
	observability.ReadyHandler("filescope", checks).ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "not_ready", status["status"])

	inner, ok := status["checks"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "disk offline", inner["storage"])
}

func TestPrometheusHandler_ServesMetrics(t *testing.T) {
	t.Parallel()

	ph, err := observability.NewPrometheusHandler()
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, ph.Shutdown(context.Background()))
	})

	red, err := observability.NewREDMetrics(ph.Meter("filescope"))
	require.NoError(t, err)

	red.RecordRequest(context.Background(), "search_files", "ok", 20*time.Millisecond)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	ph.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "filescope_requests_total")
}
