package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// LedgerMetrics records stock ledger outcomes. It satisfies the ledger
// service's MetricsRecorder.
type LedgerMetrics struct {
	commits    metric.Int64Counter
	units      metric.Int64Counter
	rejections metric.Int64Counter
	drift      metric.Int64Gauge
}

// NewLedgerMetrics creates the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter) (*LedgerMetrics, error) {
	commits, err := meter.Int64Counter("ledger.operations",
		metric.WithDescription("Committed ledger operations"),
		metric.WithUnit("{operation}"))
	if err != nil {
		return nil, fmt.Errorf("ledger.operations: %w", err)
	}
	units, err := meter.Int64Counter("ledger.units",
		metric.WithDescription("Stock units moved by committed operations"),
		metric.WithUnit("{unit}"))
	if err != nil {
		return nil, fmt.Errorf("ledger.units: %w", err)
	}
	rejections, err := meter.Int64Counter("ledger.rejections",
		metric.WithDescription("Ledger operations refused, by error code"),
		metric.WithUnit("{operation}"))
	if err != nil {
		return nil, fmt.Errorf("ledger.rejections: %w", err)
	}
	drift, err := meter.Int64Gauge("ledger.drift_articles",
		metric.WithDescription("Articles whose stock disagrees with the movement journal at the last reconciliation"),
		metric.WithUnit("{article}"))
	if err != nil {
		return nil, fmt.Errorf("ledger.drift_articles: %w", err)
	}
	return &LedgerMetrics{commits: commits, units: units, rejections: rejections, drift: drift}, nil
}

func (m *LedgerMetrics) RecordCommit(ctx context.Context, operation string, quantity int) {
	attrs := metric.WithAttributes(attribute.String("operation", operation))
	m.commits.Add(ctx, 1, attrs)
	if quantity < 0 {
		quantity = -quantity
	}
	m.units.Add(ctx, int64(quantity), attrs)
}

func (m *LedgerMetrics) RecordRejection(ctx context.Context, operation, code string) {
	m.rejections.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("code", code),
	))
}

func (m *LedgerMetrics) RecordDrift(ctx context.Context, articles int) {
	m.drift.Record(ctx, int64(articles))
}
