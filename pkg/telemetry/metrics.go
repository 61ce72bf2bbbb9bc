package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the step invocation collectors on a private registry.
type Metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	registry    *prometheus.Registry
}

// NewMetrics creates and registers the step collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		invocations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "greenhouse_step_invocations_total",
				Help: "Step invocations by step name and outcome",
			},
			[]string{"step", "status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "greenhouse_step_duration_seconds",
				Help:    "Step invocation latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"step"},
		),
		registry: registry,
	}

	registry.MustRegister(m.invocations, m.duration)
	return m
}

// ObserveStep records one invocation of step.
func (m *Metrics) ObserveStep(step string, elapsed time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.invocations.WithLabelValues(step, status).Inc()
	m.duration.WithLabelValues(step).Observe(elapsed.Seconds())
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
