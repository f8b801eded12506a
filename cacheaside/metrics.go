package cacheaside

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts cache-aside outcomes per tag. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	requests      *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	failures      *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "requests_total",
			Help:      "Cache-aside lookups by tag and result (hit or miss).",
		}, []string{"tag", "result"}),
		invalidations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Tag-wide invalidations that completed.",
		}, []string{"tag"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Subsystem: "cache",
			Name:      "failures_total",
			Help:      "Cache backend failures by tag and operation.",
		}, []string{"tag", "op"}),
	}
	if reg != nil {
		reg.MustRegister(m.requests, m.invalidations, m.failures)
	}
	return m
}

func (m *Metrics) hit(tag string) {
	if m != nil {
		m.requests.WithLabelValues(tag, "hit").Inc()
	}
}

func (m *Metrics) miss(tag string) {
	if m != nil {
		m.requests.WithLabelValues(tag, "miss").Inc()
	}
}

func (m *Metrics) invalidated(tag string) {
	if m != nil {
		m.invalidations.WithLabelValues(tag).Inc()
	}
}

func (m *Metrics) failure(tag, op string) {
	if m != nil {
		m.failures.WithLabelValues(tag, op).Inc()
	}
}
