package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the coordinator's Prometheus collectors
type Metrics struct {
	ActiveRooms         prometheus.Gauge
	RoomsCreated        prometheus.Counter
	RoomsReaped         prometheus.Counter
	GuessesSubmitted    prometheus.Counter
	LateCorrectGuesses  prometheus.Counter
	RoundsResolved      prometheus.Counter
	MatchesCompleted    prometheus.Counter
	PersistenceFailures prometheus.Counter
	ConnectedClients    prometheus.Gauge
}

// New creates and registers the coordinator metrics on the given
// registerer. Tests pass a fresh prometheus.NewRegistry().
func New(namespace string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ActiveRooms: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_rooms",
			Help:      "Number of live rooms",
		}),
		RoomsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_created_total",
			Help:      "Total rooms created",
		}),
		RoomsReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rooms_reaped_total",
			Help:      "Total empty rooms deleted by the reaper",
		}),
		GuessesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guesses_submitted_total",
			Help:      "Total guesses submitted",
		}),
		LateCorrectGuesses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "late_correct_guesses_total",
			Help:      "Correct guesses that lost the race to an already sealed round",
		}),
		RoundsResolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rounds_resolved_total",
			Help:      "Rounds with a credited winner",
		}),
		MatchesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_completed_total",
			Help:      "Matches played to the final round",
		}),
		PersistenceFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_failures_total",
			Help:      "Match-end durable flushes that failed and need manual reconciliation",
		}),
		ConnectedClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected_clients",
			Help:      "Number of connected event-stream clients",
		}),
	}

	reg.MustRegister(
		m.ActiveRooms,
		m.RoomsCreated,
		m.RoomsReaped,
		m.GuessesSubmitted,
		m.LateCorrectGuesses,
		m.RoundsResolved,
		m.MatchesCompleted,
		m.PersistenceFailures,
		m.ConnectedClients,
	)

	return m
}
