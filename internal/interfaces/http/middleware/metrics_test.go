package middleware

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func TestHTTPMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	mw, err := HTTPMetrics(mp.Meter("test"))
	require.NoError(t, err)

	r := gin.New()
	r.Use(mw)
	r.GET("/api/v1/articles/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/v1/assignments", func(c *gin.Context) {
		SetErrorCode(c, "INSUFFICIENT_STOCK")
		c.Status(http.StatusUnprocessableEntity)
	})

	serve(r, http.MethodGet, "/api/v1/articles/1", nil)
	serve(r, http.MethodGet, "/api/v1/articles/2", nil)
	serve(r, http.MethodPost, "/api/v1/assignments", nil)
	serve(r, http.MethodGet, "/nowhere", nil)

	metrics := collectMetrics(t, reader)

	requests, ok := metrics["http.server.requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	counts := map[string]int64{}
	for _, dp := range requests.DataPoints {
		route, _ := dp.Attributes.Value(attribute.Key("http.route"))
		counts[route.AsString()] += dp.Value
		if route.AsString() == "/api/v1/assignments" {
			code, _ := dp.Attributes.Value(attribute.Key("error.code"))
			assert.Equal(t, "INSUFFICIENT_STOCK", code.AsString())
			class, _ := dp.Attributes.Value(attribute.Key("http.status_class"))
			assert.Equal(t, "4xx", class.AsString())
		}
	}
	assert.Equal(t, int64(2), counts["/api/v1/articles/:id"])
	assert.Equal(t, int64(1), counts["/api/v1/assignments"])
	assert.Equal(t, int64(1), counts["unmatched"])

	active, ok := metrics["http.server.active_requests"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	for _, dp := range active.DataPoints {
		assert.Zero(t, dp.Value)
	}

	_, ok = metrics["http.server.duration"].Data.(metricdata.Histogram[float64])
	assert.True(t, ok)
}

func TestStatusClass(t *testing.T) {
	assert.Equal(t, "2xx", StatusClass(http.StatusCreated))
	assert.Equal(t, "4xx", StatusClass(http.StatusConflict))
	assert.Equal(t, "5xx", StatusClass(http.StatusServiceUnavailable))
	assert.Equal(t, "other", StatusClass(0))
}
