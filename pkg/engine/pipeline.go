package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kithlabs/kith/pkg/graph"
)

// Pipeline runs the full recommendation batch: build the graph, aggregate
// neighbor sets, join them back onto the vertices, then surface
// friends-of-friends above the threshold. The computation is all-or-nothing;
// a failed stage returns an error and no recommendations.
type Pipeline struct {
	// Threshold is the exclusive minimum number of distinct two-hop paths a
	// candidate needs to be recommended.
	Threshold int
	// Workers is the parallel worker count per stage; zero selects
	// min(NumCPU, 8).
	Workers int
	// Logger receives stage-level progress. Nil disables logging.
	Logger *slog.Logger
}

// StageTiming records the wall time of one pipeline stage.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result carries everything a sink needs after a successful run.
type Result struct {
	Vertices        int
	Edges           int
	Recommendations []Recommendation
	Stages          []StageTiming
}

// Run executes the pipeline over the given edge records. Isolated vertices
// can only enter the graph through vertexIDs; pass nil when the vertex set is
// fully derived from edges.
func (p *Pipeline) Run(ctx context.Context, vertexIDs []string, edges []graph.Edge[string, graph.NoValue]) (*Result, error) {
	if p.Threshold < 0 {
		return nil, fmt.Errorf("threshold must be non-negative, got %d", p.Threshold)
	}
	logger := p.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	result := &Result{Edges: len(edges)}
	timed := func(stage string, fn func() error) error {
		start := time.Now()
		if err := fn(); err != nil {
			KithRunsTotal.WithLabelValues("failed").Inc()
			return fmt.Errorf("%s stage: %w", stage, err)
		}
		elapsed := time.Since(start)
		result.Stages = append(result.Stages, StageTiming{Stage: stage, Duration: elapsed})
		KithStageDurationSeconds.WithLabelValues(stage).Set(elapsed.Seconds())
		logger.Info("stage complete", "stage", stage, "duration", elapsed)
		return nil
	}

	var g *SocialGraph
	if err := timed("build", func() error {
		g = graph.New(vertexIDs, edges, SeedNeighborSet)
		result.Vertices = g.NumVertices()
		KithGraphVertices.Set(float64(g.NumVertices()))
		KithGraphEdges.Set(float64(g.NumEdges()))
		return nil
	}); err != nil {
		return nil, err
	}

	// Fill each vertex's set with its neighbors' IDs. Union is commutative and
	// associative, so partial folds may merge in any order.
	var neighborSets map[string]IDSet
	if err := timed("reduce", func() error {
		var err error
		neighborSets, err = ReduceOnNeighbors(ctx, g, IDSet.Union, graph.DirectionAll, WithWorkers(p.Workers))
		return err
	}); err != nil {
		return nil, err
	}

	// Attach the aggregated sets to the vertices. The join must cover every
	// vertex before the group-reduce starts, because the next stage reads the
	// post-join values.
	if err := timed("join", func() error {
		g = g.JoinWithVertices(neighborSets, func(_, update IDSet) IDSet { return update })
		return nil
	}); err != nil {
		return nil, err
	}

	if err := timed("group_reduce", func() error {
		var err error
		result.Recommendations, err = GroupReduceOnNeighbors(ctx, g, RecommendFriends(p.Threshold), graph.DirectionAll, WithWorkers(p.Workers))
		return err
	}); err != nil {
		return nil, err
	}

	KithRecommendations.Set(float64(len(result.Recommendations)))
	KithRunsTotal.WithLabelValues("succeeded").Inc()
	logger.Info("pipeline complete",
		"vertices", result.Vertices,
		"edges", result.Edges,
		"recommendations", len(result.Recommendations),
		"threshold", p.Threshold,
	)
	return result, nil
}
