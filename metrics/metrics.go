// Package metrics exposes Prometheus instruments for puzzle activity.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// movesTotal counts counted moves.
	// Labels: kind (move, slide)
	movesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fifteen_puzzle",
		Subsystem: "engine",
		Name:      "moves_total",
		Help:      "Counted tile moves by kind",
	}, []string{"kind"})

	// ignoredSelections counts MoveTile calls that changed nothing.
	ignoredSelections = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fifteen_puzzle",
		Subsystem: "engine",
		Name:      "ignored_selections_total",
		Help:      "Tile selections that were neither adjacent to nor aligned with the blank",
	})

	shufflesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fifteen_puzzle",
		Subsystem: "engine",
		Name:      "shuffles_total",
		Help:      "Boards shuffled",
	})

	solvesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fifteen_puzzle",
		Subsystem: "engine",
		Name:      "solves_total",
		Help:      "Rounds solved",
	})

	// solveMoves is the distribution of final move counts.
	solveMoves = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "fifteen_puzzle",
		Subsystem: "engine",
		Name:      "solve_moves",
		Help:      "Move count at the moment a round was solved",
		Buckets:   []float64{10, 25, 50, 100, 200, 400, 800},
	})

	invariantViolations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "fifteen_puzzle",
		Subsystem: "engine",
		Name:      "invariant_violations_total",
		Help:      "Slides stopped because a tile was missing from its cell",
	})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "fifteen_puzzle",
		Subsystem: "session",
		Name:      "active",
		Help:      "Puzzle sessions currently held in memory",
	})
)

// RecordMove records a counted move of the given kind ("move" or "slide").
func RecordMove(kind string) {
	movesTotal.WithLabelValues(kind).Inc()
}

// RecordIgnoredSelection records a selection that was a no-op.
func RecordIgnoredSelection() {
	ignoredSelections.Inc()
}

// RecordShuffle records a shuffle.
func RecordShuffle() {
	shufflesTotal.Inc()
}

// RecordSolve records a solved round and its final move count.
func RecordSolve(moveCount int) {
	solvesTotal.Inc()
	solveMoves.Observe(float64(moveCount))
}

// RecordInvariantViolation records a slide aborted by a missing tile.
func RecordInvariantViolation() {
	invariantViolations.Inc()
}

// SetActiveSessions sets the number of live sessions.
func SetActiveSessions(n int) {
	activeSessions.Set(float64(n))
}
