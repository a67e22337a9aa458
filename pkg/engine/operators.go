package engine

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/kithlabs/kith/pkg/graph"
)

const (
	// maxDefaultWorkers caps auto-sized worker pools regardless of CPU count.
	// Neighbor aggregation is memory-bound and does not benefit from excessive
	// parallelism.
	maxDefaultWorkers = 8
)

// Option configures an operator invocation.
type Option func(*options)

type options struct {
	workers int
}

// WithWorkers sets the number of parallel workers. Zero or negative selects
// min(NumCPU, 8).
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU()
		if o.workers > maxDefaultWorkers {
			o.workers = maxDefaultWorkers
		}
	}
	return o
}

// ReduceOnNeighbors folds combine over each vertex's neighbor values for the
// given direction, seeded with the vertex's own value, and returns one
// aggregate per vertex. A vertex with no incident edges keeps only its seed.
//
// combine must be associative and commutative: the engine applies it in any
// order and any grouping, including parallel partial folds, and violating this
// precondition yields undefined aggregates. combine must not mutate its
// arguments; it returns a new value.
//
// The graph is not modified. Vertices are processed on a partitioned worker
// pool; each partition writes a private result map and the disjoint maps are
// merged after every worker finishes, so no result is visible until the whole
// stage succeeds.
func ReduceOnNeighbors[K comparable, VV, EV any](ctx context.Context, g *graph.Graph[K, VV, EV], combine func(VV, VV) VV, dir graph.Direction, opts ...Option) (map[K]VV, error) {
	o := applyOptions(opts)
	ids := g.VertexIDs()

	partials := make([]map[K]VV, o.workers)
	grp, ctx := errgroup.WithContext(ctx)
	for w := 0; w < o.workers; w++ {
		part := make(map[K]VV)
		partials[w] = part
		lo, hi := partition(len(ids), o.workers, w)
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for _, id := range ids[lo:hi] {
				v, _ := g.Vertex(id)
				acc := v.Value
				for _, n := range g.Neighbors(id, dir) {
					acc = combine(acc, n.Vertex.Value)
				}
				part[id] = acc
			}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	result := make(map[K]VV, len(ids))
	for _, part := range partials {
		for id, value := range part {
			result[id] = value
		}
	}
	return result, nil
}

// NeighborsFunc receives one vertex together with all of its live
// (edge, neighbor) pairs and emits zero or more derived records. The pair
// order is unspecified and must not affect correctness. Invocations for
// different vertices share no mutable state.
type NeighborsFunc[K comparable, VV, EV, R any] func(v *graph.Vertex[K, VV], neighbors []graph.Neighbor[K, VV, EV], emit func(R))

// GroupReduceOnNeighbors invokes fn once per vertex that has at least one
// incident edge in the given direction and concatenates everything the
// invocations emit. Vertices without incident edges are skipped entirely.
// Record order across vertices is unspecified.
func GroupReduceOnNeighbors[K comparable, VV, EV, R any](ctx context.Context, g *graph.Graph[K, VV, EV], fn NeighborsFunc[K, VV, EV, R], dir graph.Direction, opts ...Option) ([]R, error) {
	o := applyOptions(opts)
	ids := g.VertexIDs()

	partials := make([][]R, o.workers)
	grp, ctx := errgroup.WithContext(ctx)
	for w := 0; w < o.workers; w++ {
		w := w
		lo, hi := partition(len(ids), o.workers, w)
		grp.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var records []R
			emit := func(r R) { records = append(records, r) }
			for _, id := range ids[lo:hi] {
				neighbors := g.Neighbors(id, dir)
				if len(neighbors) == 0 {
					continue
				}
				v, _ := g.Vertex(id)
				fn(v, neighbors, emit)
			}
			partials[w] = records
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	var out []R
	for _, part := range partials {
		out = append(out, part...)
	}
	return out, nil
}

// partition splits n items into count contiguous ranges and returns the
// half-open bounds of range i. Remainders spread over the leading ranges.
func partition(n, count, i int) (lo, hi int) {
	size := n / count
	rem := n % count
	lo = i*size + min(i, rem)
	hi = lo + size
	if i < rem {
		hi++
	}
	return lo, hi
}
