package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestPrometheus_RecordMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(reg)

	p.RecordMetrics("run-1", "fetch_jobs", "success", 2*time.Second, map[string]any{"method": "browser", "jobs": 4})
	p.RecordMetrics("run-2", "fetch_jobs", "failure", time.Second, nil)

	assert.InDelta(t, 1, testutil.ToFloat64(p.runs.WithLabelValues("fetch_jobs", "success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(p.runs.WithLabelValues("fetch_jobs", "failure")), 0)
	assert.InDelta(t, 4, testutil.ToFloat64(p.jobs.WithLabelValues("browser")), 0)

	count, err := testutil.GatherAndCount(reg, "careers_fetch_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestNop_IsSafe(t *testing.T) {
	r := OrNop(nil)
	ctx, span := r.StartSpan(context.Background(), "fetch", map[string]any{"a": 1})
	assert.NotNil(t, ctx)
	assert.NotNil(t, span)
	r.SetSpanAttributes(span, map[string]any{"strategy.failed": "browser"})
	r.RecordMetrics("id", "op", "success", time.Second, nil)
	span.End()
}

func TestAttributes(t *testing.T) {
	attrs := Attributes(map[string]any{
		"s":   "x",
		"b":   true,
		"i":   3,
		"f":   1.5,
		"ss":  []string{"a", "b"},
		"err": errors.New("boom"),
	})

	got := make(map[attribute.Key]attribute.Value, len(attrs))
	for _, kv := range attrs {
		got[kv.Key] = kv.Value
	}
	assert.Equal(t, "x", got["s"].AsString())
	assert.True(t, got["b"].AsBool())
	assert.Equal(t, int64(3), got["i"].AsInt64())
	assert.InDelta(t, 1.5, got["f"].AsFloat64(), 0)
	assert.Equal(t, []string{"a", "b"}, got["ss"].AsStringSlice())
	assert.Equal(t, "boom", got["err"].AsString())
}
