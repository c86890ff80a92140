package vizserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type metrics struct {
	runsCreated   prometheus.Counter
	runsActive    prometheus.Gauge
	runsFinished  *prometheus.CounterVec
	steps         prometheus.Counter
	expandedNodes prometheus.Histogram
}

func newMetrics(registry prometheus.Registerer) *metrics {
	factory := promauto.With(registry)
	return &metrics{
		runsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridviz_runs_created_total",
			Help: "Searches started.",
		}),
		runsActive: factory.NewGauge(prometheus.GaugeOpts{
			Name: "gridviz_runs_active",
			Help: "Searches currently held by the server.",
		}),
		runsFinished: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "gridviz_runs_finished_total",
			Help: "Searches that reached a final state, by outcome.",
		}, []string{"outcome"}),
		steps: factory.NewCounter(prometheus.CounterOpts{
			Name: "gridviz_steps_total",
			Help: "Search steps served.",
		}),
		expandedNodes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridviz_expanded_nodes",
			Help:    "Locations expanded by finished searches.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}
