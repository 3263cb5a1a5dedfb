package promotion

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts executed promotions. A nil *Metrics records nothing.
type Metrics struct {
	outcomes *prometheus.CounterVec
	failures *prometheus.CounterVec
	batches  prometheus.Counter
}

// NewMetrics registers the promotion collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		outcomes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "darasa",
			Subsystem: "promotion",
			Name:      "outcomes_total",
			Help:      "Executed promotions by outcome.",
		}, []string{"outcome"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "darasa",
			Subsystem: "promotion",
			Name:      "refusals_total",
			Help:      "Promotions refused or failed, by reason.",
		}, []string{"reason"}),
		batches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "darasa",
			Subsystem: "promotion",
			Name:      "batches_total",
			Help:      "Batch promotion runs.",
		}),
	}
}

func (m *Metrics) observeOutcome(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeFailure(reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(reason).Inc()
}

func (m *Metrics) observeBatch() {
	if m == nil {
		return
	}
	m.batches.Inc()
}
