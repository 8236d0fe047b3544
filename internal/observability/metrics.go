package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector holds all Prometheus metrics for toolgate.
// Uses a custom registry — no global state.
type MetricsCollector struct {
	Registry *prometheus.Registry

	// Sandbox metrics.
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration *prometheus.HistogramVec

	// Safety-layer metrics.
	RejectionsTotal *prometheus.CounterVec

	// System metrics.
	ActiveExecutions prometheus.Gauge
}

// NewMetricsCollector creates a MetricsCollector with all metrics
// registered on a custom prometheus.Registry.
func NewMetricsCollector() *MetricsCollector {
	reg := prometheus.NewRegistry()

	m := &MetricsCollector{
		Registry: reg,

		ExecutionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolgate",
			Subsystem: "sandbox",
			Name:      "executions_total",
			Help:      "Total sandboxed command executions.",
		}, []string{"tool", "status"}),

		ExecutionDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "toolgate",
			Subsystem: "sandbox",
			Name:      "execution_duration_seconds",
			Help:      "Sandboxed command duration in seconds.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		}, []string{"tool"}),

		RejectionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "toolgate",
			Subsystem: "safety",
			Name:      "rejections_total",
			Help:      "Command constructions refused by the safety layer.",
		}, []string{"tool", "kind"}),

		ActiveExecutions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "toolgate",
			Name:      "active_executions",
			Help:      "Commands currently running in the sandbox.",
		}),
	}

	reg.MustRegister(
		m.ExecutionsTotal,
		m.ExecutionDuration,
		m.RejectionsTotal,
		m.ActiveExecutions,
	)

	return m
}
