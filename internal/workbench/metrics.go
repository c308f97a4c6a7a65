package workbench

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Labels: type (reaction type)
	reactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pai_lab",
		Subsystem: "bench",
		Name:      "reactions_total",
		Help:      "Reactions performed, by reaction type",
	}, []string{"type"})

	// Labels: kind (no_reaction, same_substance)
	nonReactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pai_lab",
		Subsystem: "bench",
		Name:      "non_reactions_total",
		Help:      "Mixes that produced no reaction",
	}, []string{"kind"})

	// Labels: mode
	pointsAwardedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pai_lab",
		Subsystem: "bench",
		Name:      "points_awarded_total",
		Help:      "Points awarded across all benches",
	}, []string{"mode"})

	// Labels: exercise
	exercisesCompletedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pai_lab",
		Subsystem: "bench",
		Name:      "exercises_completed_total",
		Help:      "Guided exercises completed",
	}, []string{"exercise"})

	benchesOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pai_lab",
		Subsystem: "bench",
		Name:      "open",
		Help:      "Benches currently held in memory",
	})

	temperatureObserved = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "pai_lab",
		Subsystem: "bench",
		Name:      "temperature_celsius",
		Help:      "Bench temperature after each reaction",
		Buckets:   []float64{0, 10, 25, 40, 60, 80, 100, 150},
	})
)
