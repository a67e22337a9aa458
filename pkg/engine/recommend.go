package engine

import (
	"sort"

	"github.com/kithlabs/kith/pkg/graph"
)

// IDSet is the vertex value used by the recommendation computation: the set of
// vertex IDs a user is known to be connected to, always including the user's
// own ID. Keeping self in the set lets "is myself" and "is already a friend"
// collapse into one membership check.
type IDSet map[string]struct{}

// NewIDSet builds a set from the given IDs.
func NewIDSet(ids ...string) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Union returns a new set holding every ID from both operands. Neither operand
// is modified, which keeps parallel partial folds safe without locking.
func (s IDSet) Union(other IDSet) IDSet {
	merged := make(IDSet, len(s)+len(other))
	for id := range s {
		merged[id] = struct{}{}
	}
	for id := range other {
		merged[id] = struct{}{}
	}
	return merged
}

// IDs returns the members in sorted order.
func (s IDSet) IDs() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Recommendation is one "people you might know" candidate for a source user.
type Recommendation struct {
	Source    string
	Candidate string
}

// SocialGraph is the concrete graph instantiation the recommender runs on:
// string user IDs, neighbor-ID-set values, no edge payload.
type SocialGraph = graph.Graph[string, IDSet, graph.NoValue]

// SeedNeighborSet is the vertex init function for the recommender: each user
// starts out knowing only themself.
func SeedNeighborSet(id string) IDSet {
	return NewIDSet(id)
}

// RecommendFriends returns the group-reduce function that surfaces
// friends-of-friends. For each neighbor u of v it walks u's joined neighbor
// set and counts every ID that is neither v itself nor already in v's own
// set; a candidate is emitted when its count strictly exceeds threshold.
// A candidate reached exactly threshold times is not emitted.
//
// Parallel edges between the same pair are not deduplicated upstream, so each
// duplicate contributes its own two-hop paths and inflates the counts. That
// matches the input contract: duplicate edges are accepted, not corrected.
func RecommendFriends(threshold int) NeighborsFunc[string, IDSet, graph.NoValue, Recommendation] {
	return func(v *graph.Vertex[string, IDSet], neighbors []graph.Neighbor[string, IDSet, graph.NoValue], emit func(Recommendation)) {
		scores := make(map[string]int)
		for _, n := range neighbors {
			for friendOfFriend := range n.Vertex.Value {
				if friendOfFriend == v.ID {
					continue
				}
				if v.Value.Contains(friendOfFriend) {
					continue
				}
				scores[friendOfFriend]++
			}
		}
		for candidate, count := range scores {
			if count > threshold {
				emit(Recommendation{Source: v.ID, Candidate: candidate})
			}
		}
	}
}
