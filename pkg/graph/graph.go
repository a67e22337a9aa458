package graph

// Direction selects which incident edges an adjacency query considers.
type Direction int

const (
	// DirectionOut follows edges from source to target.
	DirectionOut Direction = iota
	// DirectionIn follows edges from target to source.
	DirectionIn
	// DirectionAll follows edges both ways, treating the edge list as undirected.
	DirectionAll
)

func (d Direction) String() string {
	switch d {
	case DirectionOut:
		return "out"
	case DirectionIn:
		return "in"
	case DirectionAll:
		return "all"
	default:
		return "unknown"
	}
}

// NoValue is an empty payload for edges or vertices that carry no data.
type NoValue struct{}

// Vertex is a node in the graph. The value is replaced wholesale by joins,
// never mutated in place.
type Vertex[K comparable, VV any] struct {
	ID    K
	Value VV
}

// Edge is a directed input record. Whether it is interpreted as directed is up
// to the Direction passed to adjacency queries.
type Edge[K comparable, EV any] struct {
	Source K
	Target K
	Value  EV
}

// Neighbor pairs an incident edge with the vertex on its far side.
type Neighbor[K comparable, VV, EV any] struct {
	Edge   Edge[K, EV]
	Vertex *Vertex[K, VV]
}

// Graph is an immutable vertex/edge store with prebuilt adjacency indexes.
// Build it once with New or FromEdges; derive updated graphs with
// JoinWithVertices.
type Graph[K comparable, VV, EV any] struct {
	vertices map[K]*Vertex[K, VV]
	ids      []K // insertion order, for deterministic partitioning
	edges    []Edge[K, EV]
	out      map[K][]int // vertex ID -> indexes into edges
	in       map[K][]int
}

// New builds a graph from an explicit vertex ID list plus an edge list. The
// vertex set is the deduplicated union of the listed IDs and every edge
// endpoint, so every edge always resolves; IDs not touched by any edge become
// isolated vertices. Each vertex value is initialized via initValue.
func New[K comparable, VV, EV any](vertexIDs []K, edges []Edge[K, EV], initValue func(K) VV) *Graph[K, VV, EV] {
	g := &Graph[K, VV, EV]{
		vertices: make(map[K]*Vertex[K, VV]),
		edges:    make([]Edge[K, EV], len(edges)),
		out:      make(map[K][]int),
		in:       make(map[K][]int),
	}
	copy(g.edges, edges)

	add := func(id K) {
		if _, ok := g.vertices[id]; ok {
			return
		}
		g.vertices[id] = &Vertex[K, VV]{ID: id, Value: initValue(id)}
		g.ids = append(g.ids, id)
	}

	for _, id := range vertexIDs {
		add(id)
	}
	for i, e := range g.edges {
		add(e.Source)
		add(e.Target)
		g.out[e.Source] = append(g.out[e.Source], i)
		g.in[e.Target] = append(g.in[e.Target], i)
	}
	return g
}

// FromEdges builds a graph whose vertex set is derived entirely from edge
// endpoints.
func FromEdges[K comparable, VV, EV any](edges []Edge[K, EV], initValue func(K) VV) *Graph[K, VV, EV] {
	return New(nil, edges, initValue)
}

// NumVertices returns the number of distinct vertices.
func (g *Graph[K, VV, EV]) NumVertices() int { return len(g.vertices) }

// NumEdges returns the number of edge records, multi-edges included.
func (g *Graph[K, VV, EV]) NumEdges() int { return len(g.edges) }

// Vertex looks up a vertex by ID.
func (g *Graph[K, VV, EV]) Vertex(id K) (*Vertex[K, VV], bool) {
	v, ok := g.vertices[id]
	return v, ok
}

// VertexIDs returns all vertex IDs in insertion order. The returned slice is
// shared; callers must not modify it.
func (g *Graph[K, VV, EV]) VertexIDs() []K { return g.ids }

// Edges returns the edge records as given at construction. The returned slice
// is shared; callers must not modify it.
func (g *Graph[K, VV, EV]) Edges() []Edge[K, EV] { return g.edges }

// Neighbors returns the (edge, neighbor vertex) pairs incident to id for the
// given direction. Self-loops and multi-edges contribute one pair per incident
// edge record; nothing is deduplicated. Order is unspecified.
func (g *Graph[K, VV, EV]) Neighbors(id K, dir Direction) []Neighbor[K, VV, EV] {
	var pairs []Neighbor[K, VV, EV]
	if dir == DirectionOut || dir == DirectionAll {
		for _, i := range g.out[id] {
			e := g.edges[i]
			pairs = append(pairs, Neighbor[K, VV, EV]{Edge: e, Vertex: g.vertices[e.Target]})
		}
	}
	if dir == DirectionIn || dir == DirectionAll {
		for _, i := range g.in[id] {
			e := g.edges[i]
			pairs = append(pairs, Neighbor[K, VV, EV]{Edge: e, Vertex: g.vertices[e.Source]})
		}
	}
	return pairs
}

// Degree returns the number of incident edge records for the given direction.
func (g *Graph[K, VV, EV]) Degree(id K, dir Direction) int {
	switch dir {
	case DirectionOut:
		return len(g.out[id])
	case DirectionIn:
		return len(g.in[id])
	default:
		return len(g.out[id]) + len(g.in[id])
	}
}

// JoinWithVertices returns a new graph with vertex values replaced via
// merge(old, update) for every vertex that has an entry in updates. Vertices
// absent from updates keep their current value; update keys that match no
// vertex are ignored. The edge list and adjacency indexes are shared with the
// receiver, which stays untouched.
func (g *Graph[K, VV, EV]) JoinWithVertices(updates map[K]VV, merge func(old, update VV) VV) *Graph[K, VV, EV] {
	joined := &Graph[K, VV, EV]{
		vertices: make(map[K]*Vertex[K, VV], len(g.vertices)),
		ids:      g.ids,
		edges:    g.edges,
		out:      g.out,
		in:       g.in,
	}
	for id, v := range g.vertices {
		value := v.Value
		if update, ok := updates[id]; ok {
			value = merge(v.Value, update)
		}
		joined.vertices[id] = &Vertex[K, VV]{ID: id, Value: value}
	}
	return joined
}
