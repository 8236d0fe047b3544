package observability

import (
	"testing"

	dto "github.com/prometheus/client_model/go"
)

// counterValue reads a counter back through the registry, the same way
// a scrape would see it.
func counterValue(t *testing.T, m *MetricsCollector, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := m.Registry.Gather()
	if err != nil {
		t.Fatalf("gathering metrics: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if matchLabels(metric, labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func matchLabels(metric *dto.Metric, labels map[string]string) bool {
	found := 0
	for _, lp := range metric.GetLabel() {
		if want, ok := labels[lp.GetName()]; ok {
			if lp.GetValue() != want {
				return false
			}
			found++
		}
	}
	return found == len(labels)
}

func TestMetricsCollector_Registration(t *testing.T) {
	m := NewMetricsCollector()

	m.ExecutionsTotal.WithLabelValues("ripgrep_search", "ok").Inc()
	m.ExecutionsTotal.WithLabelValues("ripgrep_search", "ok").Inc()
	m.RejectionsTotal.WithLabelValues("git_read", "injection").Inc()
	m.ExecutionDuration.WithLabelValues("ripgrep_search").Observe(0.25)
	m.ActiveExecutions.Inc()

	got := counterValue(t, m, "toolgate_sandbox_executions_total",
		map[string]string{"tool": "ripgrep_search", "status": "ok"})
	if got != 2 {
		t.Errorf("executions counter = %v, want 2", got)
	}

	got = counterValue(t, m, "toolgate_safety_rejections_total",
		map[string]string{"tool": "git_read", "kind": "injection"})
	if got != 1 {
		t.Errorf("rejections counter = %v, want 1", got)
	}
}

func TestMetricsCollector_IsolatedRegistries(t *testing.T) {
	a := NewMetricsCollector()
	b := NewMetricsCollector()

	a.ExecutionsTotal.WithLabelValues("x", "ok").Inc()

	if got := counterValue(t, b, "toolgate_sandbox_executions_total",
		map[string]string{"tool": "x", "status": "ok"}); got != 0 {
		t.Errorf("registries share state: %v", got)
	}
}
