// Package metrics holds the Prometheus collectors for pricing requests.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/contactkeval/option-pricer/internal/pricing"
)

// Request kinds.
const (
	KindPrice      = "price"
	KindImpliedVol = "implied_vol"
	KindScenario   = "scenario"
)

// Outcomes.
const (
	OutcomeOK            = "ok"
	OutcomeInvalid       = "invalid_input"
	OutcomeNoConvergence = "no_convergence"
	OutcomeError         = "error"
)

// Metrics groups the collectors registered by New.
type Metrics struct {
	registry *prometheus.Registry

	// pricing calls by kind and outcome
	Requests *prometheus.CounterVec
	// wall time per pricing call
	Duration *prometheus.HistogramVec
	// HTTP requests by route and status code
	HTTPRequests *prometheus.CounterVec
}

// New creates the collectors on a private registry.
func New(namespace string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pricing_requests_total",
			Help:      "Total pricing requests",
		}, []string{"kind", "outcome"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pricing_duration_seconds",
			Help:      "Pricing duration in seconds",
			Buckets:   []float64{1e-6, 1e-5, 1e-4, 1e-3, 1e-2, 0.1, 1},
		}, []string{"kind"}),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total HTTP requests",
		}, []string{"route", "code"}),
	}

	m.registry.MustRegister(
		m.Requests,
		m.Duration,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Observe records one pricing call that started at start and ended with err.
func (m *Metrics) Observe(kind string, start time.Time, err error) {
	m.Duration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	m.Requests.WithLabelValues(kind, Outcome(err)).Inc()
}

// Outcome classifies a pricing error into a label value.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, pricing.ErrInvalidInput):
		return OutcomeInvalid
	case errors.Is(err, pricing.ErrNoConvergence):
		return OutcomeNoConvergence
	default:
		return OutcomeError
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
