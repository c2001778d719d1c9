package page

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts page activity. A nil *Metrics records nothing.
type Metrics struct {
	Materialized *prometheus.CounterVec
	Failed       *prometheus.CounterVec
	Resets       *prometheus.CounterVec
	Localized    *prometheus.CounterVec
}

// NewMetrics creates the page counters and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Materialized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "page",
			Name:      "materializations_total",
			Help:      "Slots materialized from a descriptor.",
		}, []string{"page", "kind"}),
		Failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "page",
			Name:      "creation_failures_total",
			Help:      "Creation functions that returned an error.",
		}, []string{"page"}),
		Resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "page",
			Name:      "resets_total",
			Help:      "Slots restored to their original descriptor.",
		}, []string{"page"}),
		Localized: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "page",
			Name:      "localizations_total",
			Help:      "Localization entries, by whether they reached a descriptor.",
		}, []string{"page", "result"}),
	}
	if reg != nil {
		reg.MustRegister(m.Materialized, m.Failed, m.Resets, m.Localized)
	}
	return m
}

func (m *Metrics) materialized(page string, kind Kind) {
	if m == nil {
		return
	}
	m.Materialized.WithLabelValues(page, kind.String()).Inc()
}

func (m *Metrics) failed(page string) {
	if m == nil {
		return
	}
	m.Failed.WithLabelValues(page).Inc()
}

func (m *Metrics) reset(page string) {
	if m == nil {
		return
	}
	m.Resets.WithLabelValues(page).Inc()
}

func (m *Metrics) localized(page string, applied bool) {
	if m == nil {
		return
	}
	result := "skipped"
	if applied {
		result = "applied"
	}
	m.Localized.WithLabelValues(page, result).Inc()
}
