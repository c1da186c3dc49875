package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// QuoteMetrics records quote lifecycle activity.
type QuoteMetrics struct {
	transitions      *prometheus.CounterVec
	overbookWarnings prometheus.Counter
	revenueEvents    *prometheus.CounterVec
}

// NewQuoteMetrics registers the quote metrics on the provided registerer.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_transitions_total",
		Help: "Quote lifecycle transitions by target state.",
	}, []string{"transition"})
	overbookWarnings := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "quote_overbook_warnings_total",
		Help: "Overbooking warnings surfaced at finalize time.",
	})
	revenueEvents := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "revenue_events_total",
		Help: "Revenue ledger events written, by type.",
	}, []string{"type"})
	reg.MustRegister(transitions, overbookWarnings, revenueEvents)
	return &QuoteMetrics{
		transitions:      transitions,
		overbookWarnings: overbookWarnings,
		revenueEvents:    revenueEvents,
	}
}

// IncTransition increments the counter for the named lifecycle transition.
func (q *QuoteMetrics) IncTransition(transition string) {
	if q == nil || q.transitions == nil {
		return
	}
	q.transitions.WithLabelValues(normalizeLabel(transition)).Inc()
}

// AddOverbookWarnings records warnings surfaced by a finalize call.
func (q *QuoteMetrics) AddOverbookWarnings(count int) {
	if q == nil || q.overbookWarnings == nil || count <= 0 {
		return
	}
	q.overbookWarnings.Add(float64(count))
}

// IncRevenueEvent increments the counter for the given ledger event type.
func (q *QuoteMetrics) IncRevenueEvent(eventType string) {
	if q == nil || q.revenueEvents == nil {
		return
	}
	q.revenueEvents.WithLabelValues(normalizeLabel(eventType)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
