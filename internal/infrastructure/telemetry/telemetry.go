// Package telemetry wires OpenTelemetry traces, metrics and logs, GORM
// instrumentation and Pyroscope profiling for the service. Every provider
// degrades to a no-op when its section is disabled, so callers never branch
// on configuration.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.37.0"
)

// serviceVersion is reported on every exported signal
const serviceVersion = "1.0.0"

const shutdownTimeout = 10 * time.Second

// Config holds the collector settings shared by all signals
type Config struct {
	Enabled           bool
	CollectorEndpoint string
	ServiceName       string
	Insecure          bool
	SamplingRatio     float64
	// MetricsInterval is the export period of the metric reader (default 60s)
	MetricsInterval time.Duration
}

func newResource(serviceName string) (*resource.Resource, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}
	return res, nil
}

// shutdownWithTimeout bounds a provider shutdown so a dead collector cannot
// hold the process on exit
func shutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()
	return shutdown(ctx)
}
