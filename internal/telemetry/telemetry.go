// Package telemetry exposes Prometheus metrics and OpenTelemetry tracing for
// the link-review service.
package telemetry

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "link-review"

// Command outcomes.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds the service collectors.
type Metrics struct {
	Commands          *prometheus.CounterVec
	AuditEvents       *prometheus.CounterVec
	SourceFetches     *prometheus.CounterVec
	SourceFetchTime   *prometheus.HistogramVec
	SourceRecords     prometheus.Gauge
	OverriddenRecords prometheus.Gauge
	AssistantRequests *prometheus.CounterVec
	EventsPublished   *prometheus.CounterVec
}

// Provider bundles metrics, a tracer and the registry behind /metrics.
// A nil *Provider is valid and records nothing.
type Provider struct {
	Tracer   trace.Tracer
	Metrics  *Metrics
	registry *prometheus.Registry
}

// NewProvider registers collectors on reg. Pass prometheus.NewRegistry() in
// tests so providers never collide.
func NewProvider(reg *prometheus.Registry) *Provider {
	return &Provider{
		Tracer:   otel.Tracer(tracerName),
		Metrics:  initMetrics(promauto.With(reg)),
		registry: reg,
	}
}

// Registerer exposes the registry for collectors owned by other packages.
// A nil Provider hands out a throwaway registry.
func (p *Provider) Registerer() prometheus.Registerer {
	if p == nil {
		return prometheus.NewRegistry()
	}
	return p.registry
}

func initMetrics(f promauto.Factory) *Metrics {
	return &Metrics{
		Commands: f.NewCounterVec(prometheus.CounterOpts{
			Name: "link_review_commands_total",
			Help: "Analyst commands by operation and outcome",
		}, []string{"operation", "outcome"}),
		AuditEvents: f.NewCounterVec(prometheus.CounterOpts{
			Name: "link_review_audit_events_total",
			Help: "History events appended, by kind",
		}, []string{"kind"}),
		SourceFetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "link_review_source_fetches_total",
			Help: "Base record source fetches by source and outcome",
		}, []string{"source", "outcome"}),
		SourceFetchTime: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "link_review_source_fetch_duration_seconds",
			Help:    "Time to fetch the base dataset",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}, []string{"source"}),
		SourceRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "link_review_source_records",
			Help: "Records returned by the last successful source fetch",
		}),
		OverriddenRecords: f.NewGauge(prometheus.GaugeOpts{
			Name: "link_review_overridden_records",
			Help: "Record ids carrying at least one analyst override",
		}),
		AssistantRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "link_review_assistant_requests_total",
			Help: "Assistant questions by outcome",
		}, []string{"outcome"}),
		EventsPublished: f.NewCounterVec(prometheus.CounterOpts{
			Name: "link_review_events_published_total",
			Help: "Audit events handed to fan-out sinks, by sink and outcome",
		}, []string{"sink", "outcome"}),
	}
}

// Handler serves the registry in Prometheus text format.
func (p *Provider) Handler() http.Handler {
	if p == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// RecordCommand counts one command outcome.
func (p *Provider) RecordCommand(operation, outcome string) {
	if p == nil {
		return
	}
	p.Metrics.Commands.WithLabelValues(operation, outcome).Inc()
}

// RecordAuditEvent counts one appended history event.
func (p *Provider) RecordAuditEvent(kind string) {
	if p == nil {
		return
	}
	p.Metrics.AuditEvents.WithLabelValues(kind).Inc()
}

// RecordSourceFetch records a fetch duration, outcome and, on success, size.
func (p *Provider) RecordSourceFetch(source string, d time.Duration, records int, err error) {
	if p == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	} else {
		p.Metrics.SourceRecords.Set(float64(records))
	}
	p.Metrics.SourceFetches.WithLabelValues(source, outcome).Inc()
	p.Metrics.SourceFetchTime.WithLabelValues(source).Observe(d.Seconds())
}

// SetOverriddenRecords sets the override store size.
func (p *Provider) SetOverriddenRecords(n int) {
	if p == nil {
		return
	}
	p.Metrics.OverriddenRecords.Set(float64(n))
}

// RecordAssistant counts one assistant question outcome.
func (p *Provider) RecordAssistant(outcome string) {
	if p == nil {
		return
	}
	p.Metrics.AssistantRequests.WithLabelValues(outcome).Inc()
}

// RecordPublish counts one fan-out attempt.
func (p *Provider) RecordPublish(sink string, err error) {
	if p == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	p.Metrics.EventsPublished.WithLabelValues(sink, outcome).Inc()
}

// StartSpan starts a span; the caller ends it.
//
//nolint:spancheck // caller ends the span
func (p *Provider) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.Tracer(tracerName)
	if p != nil && p.Tracer != nil {
		tracer = p.Tracer
	}
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}
