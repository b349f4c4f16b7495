package metrics

import "github.com/prometheus/client_golang/prometheus"

// StoreMetrics counts cart and wishlist mutations.
type StoreMetrics struct {
	mutations *prometheus.CounterVec
}

func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_store_mutations_total",
		Help: "Cart and wishlist mutations by store, operation and outcome.",
	}, []string{"store", "operation", "outcome"})
	reg.MustRegister(mutations)
	return &StoreMetrics{mutations: mutations}
}

// Record counts a mutation; err decides the outcome label.
func (s *StoreMetrics) Record(store, operation string, err error) {
	if s == nil || s.mutations == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = "failure"
	}
	s.mutations.WithLabelValues(normalizeLabel(store), normalizeLabel(operation), outcome).Inc()
}
