// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	GamesCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tictactoe_games_created_total",
			Help: "Total number of games created",
		},
	)

	GamesFinished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictactoe_games_finished_total",
			Help: "Total number of finished games by outcome",
		},
		[]string{"outcome"}, // "human", "ai", "draw"
	)

	MovesPlayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictactoe_moves_total",
			Help: "Total number of moves played by side",
		},
		[]string{"player"}, // "human", "ai"
	)

	InvalidMoves = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tictactoe_invalid_moves_total",
			Help: "Total number of rejected human moves by reason",
		},
		[]string{"reason"},
	)

	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tictactoe_search_duration_seconds",
			Help:    "Duration of AI move searches in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs .. ~1.6s
		},
	)

	SearchNodes = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tictactoe_search_nodes",
			Help:    "Number of positions visited per AI move search",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10), // 1 .. 262144
		},
	)

	Subscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tictactoe_subscribers",
			Help: "Current number of board stream subscribers",
		},
	)
)

// RecordSearch records one AI search.
func RecordSearch(d time.Duration, nodes int) {
	SearchDuration.Observe(d.Seconds())
	SearchNodes.Observe(float64(nodes))
	MovesPlayed.WithLabelValues("ai").Inc()
}
