package engine

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/kithlabs/kith/pkg/graph"
)

// runRecommender is the full pipeline wiring used by the scenario tests:
// seed -> reduce -> join -> group-reduce.
func runRecommender(t *testing.T, vertexIDs []string, edges []graph.Edge[string, graph.NoValue], threshold int) map[Recommendation]bool {
	t.Helper()
	ctx := context.Background()

	g := graph.New(vertexIDs, edges, SeedNeighborSet)
	sets, err := ReduceOnNeighbors(ctx, g, IDSet.Union, graph.DirectionAll)
	if err != nil {
		t.Fatalf("reduce failed: %v", err)
	}
	g = g.JoinWithVertices(sets, func(_, update IDSet) IDSet { return update })

	recs, err := GroupReduceOnNeighbors(ctx, g, RecommendFriends(threshold), graph.DirectionAll)
	if err != nil {
		t.Fatalf("group-reduce failed: %v", err)
	}

	out := make(map[Recommendation]bool, len(recs))
	for _, r := range recs {
		if out[r] {
			t.Errorf("duplicate record %v", r)
		}
		out[r] = true
	}
	return out
}

// The diamond graph: D and E are each reachable from A via two distinct
// two-hop paths (through B and through C), and vice versa.
func diamondEdges() []graph.Edge[string, graph.NoValue] {
	return socialEdges(
		[2]string{"A", "B"},
		[2]string{"A", "C"},
		[2]string{"B", "D"},
		[2]string{"C", "D"},
		[2]string{"B", "E"},
		[2]string{"C", "E"},
	)
}

func TestRecommendDiamondThresholdOne(t *testing.T) {
	recs := runRecommender(t, nil, diamondEdges(), 1)

	for _, want := range []Recommendation{
		{Source: "A", Candidate: "D"},
		{Source: "A", Candidate: "E"},
	} {
		if !recs[want] {
			t.Errorf("missing expected recommendation %v", want)
		}
	}
	for _, forbidden := range []Recommendation{
		{Source: "A", Candidate: "B"}, // direct friend
		{Source: "A", Candidate: "C"}, // direct friend
		{Source: "A", Candidate: "A"}, // self
	} {
		if recs[forbidden] {
			t.Errorf("unexpected recommendation %v", forbidden)
		}
	}
}

func TestRecommendDiamondThresholdBoundary(t *testing.T) {
	// D and E are reached from A exactly twice: count == threshold must be
	// excluded, strictly greater included.
	recs := runRecommender(t, nil, diamondEdges(), 2)

	for rec := range recs {
		if rec.Source == "A" {
			t.Errorf("expected no recommendations for A at threshold 2, got %v", rec)
		}
	}
	// B sees C three times (via A, D and E), which clears the boundary.
	if !recs[Recommendation{Source: "B", Candidate: "C"}] {
		t.Error("expected (B, C) at threshold 2")
	}

	recs = runRecommender(t, nil, diamondEdges(), 3)
	if recs[Recommendation{Source: "B", Candidate: "C"}] {
		t.Error("(B, C) with count 3 must not appear at threshold 3")
	}
}

func TestRecommendNeverEmitsSelfOrFriends(t *testing.T) {
	edges := randomEdges(40, 120, 7)
	recs := runRecommender(t, nil, edges, 0)

	friends := make(map[[2]string]bool)
	for _, e := range edges {
		friends[[2]string{e.Source, e.Target}] = true
		friends[[2]string{e.Target, e.Source}] = true
	}

	for rec := range recs {
		if rec.Source == rec.Candidate {
			t.Errorf("self recommendation %v", rec)
		}
		if friends[[2]string{rec.Source, rec.Candidate}] {
			t.Errorf("recommended an existing friend: %v", rec)
		}
	}
}

func TestRecommendOrderIndependence(t *testing.T) {
	edges := randomEdges(30, 90, 11)
	base := runRecommender(t, nil, edges, 1)

	rng := rand.New(rand.NewSource(3))
	for round := 0; round < 3; round++ {
		shuffled := make([]graph.Edge[string, graph.NoValue], len(edges))
		copy(shuffled, edges)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		got := runRecommender(t, nil, shuffled, 1)
		if len(got) != len(base) {
			t.Fatalf("permuted input changed record count: %d vs %d", len(got), len(base))
		}
		for rec := range base {
			if !got[rec] {
				t.Errorf("permuted input lost %v", rec)
			}
		}
	}
}

func TestRecommendIsolatedVertexEmitsNothing(t *testing.T) {
	recs := runRecommender(t, []string{"hermit"}, diamondEdges(), 0)
	for rec := range recs {
		if rec.Source == "hermit" || rec.Candidate == "hermit" {
			t.Errorf("isolated vertex appeared in %v", rec)
		}
	}
}

func TestRecommendZeroOrOneNeighborProducesNothing(t *testing.T) {
	// x-y is a single edge: no two-hop paths exist anywhere.
	recs := runRecommender(t, nil, socialEdges([2]string{"x", "y"}), 0)
	if len(recs) != 0 {
		t.Errorf("expected no recommendations, got %v", recs)
	}
}

func TestRecommendDuplicateEdgesInflateCounts(t *testing.T) {
	// single path a-b-c: count(c from a) == 1, excluded at threshold 1
	single := socialEdges([2]string{"a", "b"}, [2]string{"b", "c"})
	recs := runRecommender(t, nil, single, 1)
	if recs[Recommendation{Source: "a", Candidate: "c"}] {
		t.Error("(a, c) with a single path must not clear threshold 1")
	}

	// a duplicate a-b edge doubles the a->b->c path count; accepted, not corrected
	doubled := socialEdges([2]string{"a", "b"}, [2]string{"a", "b"}, [2]string{"b", "c"})
	recs = runRecommender(t, nil, doubled, 1)
	if !recs[Recommendation{Source: "a", Candidate: "c"}] {
		t.Error("duplicate edge should inflate (a, c) past threshold 1")
	}
}

func TestRecommendToleratesSelfLoops(t *testing.T) {
	edges := socialEdges([2]string{"a", "a"}, [2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "d"})
	recs := runRecommender(t, nil, edges, 0)

	for rec := range recs {
		if rec.Source == rec.Candidate {
			t.Errorf("self loop leaked into output: %v", rec)
		}
	}
	if !recs[Recommendation{Source: "a", Candidate: "c"}] {
		t.Error("expected (a, c) despite the self-loop on a")
	}
}

func TestIDSetUnionDoesNotMutate(t *testing.T) {
	left := NewIDSet("a", "b")
	right := NewIDSet("c")

	merged := left.Union(right)
	if len(merged) != 3 {
		t.Errorf("expected union of size 3, got %v", merged.IDs())
	}
	if len(left) != 2 || len(right) != 1 {
		t.Errorf("union mutated an operand: left=%v right=%v", left.IDs(), right.IDs())
	}
}

func randomEdges(vertices, count int, seed int64) []graph.Edge[string, graph.NoValue] {
	rng := rand.New(rand.NewSource(seed))
	edges := make([]graph.Edge[string, graph.NoValue], 0, count)
	for i := 0; i < count; i++ {
		src := fmt.Sprintf("u%d", rng.Intn(vertices))
		dst := fmt.Sprintf("u%d", rng.Intn(vertices))
		edges = append(edges, graph.Edge[string, graph.NoValue]{Source: src, Target: dst})
	}
	return edges
}
