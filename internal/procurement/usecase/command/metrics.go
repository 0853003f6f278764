package command

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts purchase order total recomputations. A nil *Metrics records nothing.
type Metrics struct {
	recomputations *prometheus.CounterVec
}

// NewMetrics registers the procurement metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		recomputations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "erp",
				Name:      "purchase_order_total_recomputations_total",
				Help:      "Purchase order total recomputations by outcome",
			},
			[]string{"outcome"},
		),
	}
	reg.MustRegister(m.recomputations)
	return m
}

func (m *Metrics) recomputed(outcome string) {
	if m == nil {
		return
	}
	m.recomputations.WithLabelValues(outcome).Inc()
}
