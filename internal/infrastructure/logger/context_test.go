package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))

	l := zap.NewExample()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
}

func TestL_AddsCorrelationFields(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)

	traceID, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	spanID, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    traceID,
		SpanID:     spanID,
		TraceFlags: trace.FlagsSampled,
	})

	ctx := WithContext(context.Background(), zap.New(core))
	ctx = trace.ContextWithSpanContext(ctx, sc)
	ctx = WithRequestID(ctx, "req-42")
	ctx = WithOperation(ctx, "commit_assign")

	L(ctx).With(zap.String("article_id", "a1")).Warn("insufficient stock")

	require.Equal(t, 1, recorded.Len())
	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", fields["trace_id"])
	assert.Equal(t, "00f067aa0ba902b7", fields["span_id"])
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, "commit_assign", fields["operation"])
	assert.Equal(t, "a1", fields["article_id"])
}

func TestL_WithoutCorrelation(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)

	Using(context.Background(), zap.New(core)).Info("plain")
	L(context.Background()).Error("dropped by the no-op logger")

	require.Equal(t, 1, recorded.Len())
	assert.Empty(t, recorded.All()[0].ContextMap())
}

func TestGetters(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetRequestID(ctx))
	assert.Empty(t, GetOperation(ctx))

	ctx = WithOperation(WithRequestID(ctx, "r"), "reconcile")
	assert.Equal(t, "r", GetRequestID(ctx))
	assert.Equal(t, "reconcile", GetOperation(ctx))
}
