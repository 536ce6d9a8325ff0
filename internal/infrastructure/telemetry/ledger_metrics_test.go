package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumFor(t *testing.T, m metricdata.Metrics, attrs ...attribute.KeyValue) int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	want := attribute.NewSet(attrs...)
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&want) {
			return dp.Value
		}
	}
	return 0
}

func TestLedgerMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewLedgerMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCommit(ctx, "assign", 3)
	m.RecordCommit(ctx, "assign", 2)
	m.RecordCommit(ctx, "edit", -4)
	m.RecordRejection(ctx, "assign", "INSUFFICIENT_STOCK")
	m.RecordDrift(ctx, 2)
	m.RecordDrift(ctx, 0)

	got := collect(t, reader)
	assign := attribute.String("operation", "assign")
	assert.Equal(t, int64(2), sumFor(t, got["ledger.operations"], assign))
	assert.Equal(t, int64(5), sumFor(t, got["ledger.units"], assign))
	assert.Equal(t, int64(4), sumFor(t, got["ledger.units"], attribute.String("operation", "edit")))
	assert.Equal(t, int64(1), sumFor(t, got["ledger.rejections"], assign, attribute.String("code", "INSUFFICIENT_STOCK")))

	gauge, ok := got["ledger.drift_articles"].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, int64(0), gauge.DataPoints[0].Value)
}
