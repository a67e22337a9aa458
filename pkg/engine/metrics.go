package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// KithGraphVertices tracks the vertex count of the last built graph
	KithGraphVertices = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kith_graph_vertices",
			Help: "Number of vertices in the last built graph",
		},
	)

	// KithGraphEdges tracks the edge record count of the last built graph
	KithGraphEdges = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kith_graph_edges",
			Help: "Number of edge records in the last built graph",
		},
	)

	// KithRecommendations tracks how many records the last run emitted
	KithRecommendations = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "kith_recommendations",
			Help: "Number of recommendation records emitted by the last run",
		},
	)

	// KithStageDurationSeconds tracks wall time per pipeline stage
	KithStageDurationSeconds = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "kith_stage_duration_seconds",
			Help: "Wall time of each pipeline stage in the last run",
		},
		[]string{"stage"},
	)

	// KithRunsTotal counts pipeline runs by outcome
	KithRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kith_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(KithGraphVertices)
	prometheus.MustRegister(KithGraphEdges)
	prometheus.MustRegister(KithRecommendations)
	prometheus.MustRegister(KithStageDurationSeconds)
	prometheus.MustRegister(KithRunsTotal)
}
