// Package telemetry records fetch metrics and trace attributes. Callers hold a
// Recorder; Nop is used when nothing is wired.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "go-careers-scraper/strategy"

// Recorder is the telemetry collaborator of the fetch orchestrator.
type Recorder interface {
	StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, trace.Span)
	SetSpanAttributes(span trace.Span, attrs map[string]any)
	RecordMetrics(id, operation, status string, duration time.Duration, attrs map[string]any)
}

// OrNop returns r, or Nop when r is nil.
func OrNop(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	return r
}

// Nop records nothing. Its spans are the non-recording span of ctx.
type Nop struct{}

func (Nop) StartSpan(ctx context.Context, _ string, _ map[string]any) (context.Context, trace.Span) {
	return ctx, trace.SpanFromContext(ctx)
}

func (Nop) SetSpanAttributes(trace.Span, map[string]any) {}

func (Nop) RecordMetrics(string, string, string, time.Duration, map[string]any) {}

// Prometheus exports counters and histograms and annotates otel spans.
type Prometheus struct {
	tracer   trace.Tracer
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	jobs     *prometheus.CounterVec
}

// NewPrometheus registers the fetch metrics with reg.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	factory := promauto.With(reg)
	return &Prometheus{
		tracer: otel.Tracer(tracerName),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "careers_fetch_total",
			Help: "Fetch operations by operation and outcome",
		}, []string{"operation", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "careers_fetch_duration_seconds",
			Help:    "Duration of fetch operations",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation", "status"}),
		jobs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "careers_jobs_fetched_total",
			Help: "Normalized jobs returned, by fetch method",
		}, []string{"method"}),
	}
}

func (p *Prometheus) StartSpan(ctx context.Context, name string, attrs map[string]any) (context.Context, trace.Span) {
	return p.tracer.Start(ctx, name, trace.WithAttributes(Attributes(attrs)...))
}

func (p *Prometheus) SetSpanAttributes(span trace.Span, attrs map[string]any) {
	if span == nil {
		return
	}
	span.SetAttributes(Attributes(attrs)...)
}

// RecordMetrics counts the operation and observes its duration. A "jobs" int
// attribute together with a "method" string adds to the jobs counter.
func (p *Prometheus) RecordMetrics(_ string, operation, status string, duration time.Duration, attrs map[string]any) {
	p.runs.WithLabelValues(operation, status).Inc()
	p.duration.WithLabelValues(operation, status).Observe(duration.Seconds())

	method, _ := attrs["method"].(string)
	if n, ok := attrs["jobs"].(int); ok && method != "" && n > 0 {
		p.jobs.WithLabelValues(method).Add(float64(n))
	}
}

// Attributes converts a loosely typed map into otel attributes.
func Attributes(attrs map[string]any) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		switch t := v.(type) {
		case string:
			out = append(out, attribute.String(k, t))
		case bool:
			out = append(out, attribute.Bool(k, t))
		case int:
			out = append(out, attribute.Int(k, t))
		case int64:
			out = append(out, attribute.Int64(k, t))
		case float64:
			out = append(out, attribute.Float64(k, t))
		case []string:
			out = append(out, attribute.StringSlice(k, t))
		case time.Duration:
			out = append(out, attribute.String(k, t.String()))
		case error:
			out = append(out, attribute.String(k, t.Error()))
		default:
			out = append(out, attribute.String(k, fmt.Sprint(t)))
		}
	}
	return out
}
