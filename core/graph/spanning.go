package graph

import (
	"sort"

	"github.com/adalundhe/lens/core/points"
)

// SpanningForest reduces an edge set to a maximum-weight spanning forest:
// Kruskal's algorithm with the comparison inverted so the most similar
// pairs are kept first. Edges are treated as undirected; an edge whose
// endpoints are already connected is dropped. The result is acyclic,
// connects exactly the components of the input, and maximizes total score
// among spanning selections.
func SpanningForest(edges []Edge) []Edge {
	sorted := make([]Edge, len(edges))
	copy(sorted, edges)

	// Nil scores sort after every scored edge.
	sort.SliceStable(sorted, func(a, b int) bool {
		sa, sb := sorted[a].Score, sorted[b].Score
		if sa == nil {
			return false
		}
		if sb == nil {
			return true
		}
		return *sa > *sb
	})

	uf := newUnionFind()
	forest := make([]Edge, 0, len(sorted))
	for _, edge := range sorted {
		if uf.union(edge.Source, edge.Target) {
			forest = append(forest, edge)
		}
	}
	return forest
}

// unionFind is a disjoint-set over point ids with path compression and
// union by rank.
type unionFind struct {
	parent map[points.PointID]points.PointID
	rank   map[points.PointID]int
}

func newUnionFind() *unionFind {
	return &unionFind{
		parent: make(map[points.PointID]points.PointID),
		rank:   make(map[points.PointID]int),
	}
}

func (uf *unionFind) find(id points.PointID) points.PointID {
	root, ok := uf.parent[id]
	if !ok {
		uf.parent[id] = id
		return id
	}
	if root == id {
		return id
	}
	compressed := uf.find(root)
	uf.parent[id] = compressed
	return compressed
}

// union joins the sets holding a and b, returning false when they were
// already connected.
func (uf *unionFind) union(a, b points.PointID) bool {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return false
	}
	switch {
	case uf.rank[ra] < uf.rank[rb]:
		uf.parent[ra] = rb
	case uf.rank[ra] > uf.rank[rb]:
		uf.parent[rb] = ra
	default:
		uf.parent[rb] = ra
		uf.rank[ra]++
	}
	return true
}
