package notify

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"3tcapital/wealthdesk/internal/core/lifecycle"
)

const metricPrefix = "wealthdesk_"

// Metrics holds the collectors fed by the notifiers.
type Metrics struct {
	transitions   *prometheus.CounterVec
	auditDropped  prometheus.Counter
	auditFailures prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "lifecycle_transitions_total",
				Help: "Committed lifecycle transitions by entity kind and target status",
			},
			[]string{"kind", "new_status"},
		),
		auditDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "audit_dropped_total",
			Help: "Transitions not audited because the audit queue was full or closed",
		}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: metricPrefix + "audit_write_errors_total",
			Help: "Audit entries the repository failed to store",
		}),
	}
	for _, c := range []prometheus.Collector{m.transitions, m.auditDropped, m.auditFailures} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metric: %w", err)
		}
	}
	return m, nil
}

// Notify counts the transition.
func (m *Metrics) Notify(_ context.Context, t lifecycle.Transition) {
	m.transitions.WithLabelValues(string(t.Kind), t.NewStatus).Inc()
}

func (m *Metrics) droppedAudit() {
	if m != nil {
		m.auditDropped.Inc()
	}
}

func (m *Metrics) failedAudit() {
	if m != nil {
		m.auditFailures.Inc()
	}
}
