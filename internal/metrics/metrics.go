package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the match and tournament counters served on /metrics.
// A nil *Metrics records nothing.
type Metrics struct {
	matchesFinished      prometheus.Counter
	points               *prometheus.CounterVec
	tournamentsCompleted prometheus.Counter
	activeSessions       prometheus.Gauge
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		matchesFinished: f.NewCounter(prometheus.CounterOpts{
			Name: "pong_matches_finished_total",
			Help: "Matches played to the max score.",
		}),
		points: f.NewCounterVec(prometheus.CounterOpts{
			Name: "pong_points_total",
			Help: "Points scored, by side.",
		}, []string{"side"}),
		tournamentsCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "pong_tournaments_completed_total",
			Help: "Tournaments that crowned a winner.",
		}),
		activeSessions: f.NewGauge(prometheus.GaugeOpts{
			Name: "pong_active_sessions",
			Help: "Matches currently attached to an engine.",
		}),
	}
}

func (m *Metrics) MatchFinished() {
	if m == nil {
		return
	}
	m.matchesFinished.Inc()
}

// Point counts a point for player 1 (left) or player 2 (right).
func (m *Metrics) Point(player int) {
	if m == nil {
		return
	}
	side := "left"
	if player == 2 {
		side = "right"
	}
	m.points.WithLabelValues(side).Inc()
}

func (m *Metrics) TournamentCompleted() {
	if m == nil {
		return
	}
	m.tournamentsCompleted.Inc()
}

func (m *Metrics) SessionStarted() {
	if m == nil {
		return
	}
	m.activeSessions.Inc()
}

func (m *Metrics) SessionEnded() {
	if m == nil {
		return
	}
	m.activeSessions.Dec()
}
