package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusHandler bridges an OTel meter provider to a Prometheus scrape
// endpoint. It owns its own registry so application metrics do not mix with
// whatever the default registry collects.
type PrometheusHandler struct {
	registry *prometheus.Registry
	provider *sdkmetric.MeterProvider
}

// NewPrometheusHandler creates a Prometheus-backed meter provider and the
// registry serving its scrape endpoint.
func NewPrometheusHandler() (*PrometheusHandler, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &PrometheusHandler{
		registry: registry,
		provider: provider,
	}, nil
}

// Meter returns a meter backed by the Prometheus exporter.
func (ph *PrometheusHandler) Meter(name string) metric.Meter {
	return ph.provider.Meter(name)
}

// Handler returns the HTTP handler serving the /metrics scrape endpoint.
func (ph *PrometheusHandler) Handler() http.Handler {
	return promhttp.HandlerFor(ph.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes and stops the meter provider.
func (ph *PrometheusHandler) Shutdown(ctx context.Context) error {
	return ph.provider.Shutdown(ctx)
}
