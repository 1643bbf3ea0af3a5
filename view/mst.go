package view

import (
	"math"
	"sort"

	"github.com/theodesp/unionfind"
	"gonum.org/v1/gonum/floats"
)

// Point is a 2-D position.
type Point [2]float64

// Edge joins two nodes. Weight is their Euclidean distance.
type Edge struct {
	From   int
	To     int
	Weight float64
}

// MinimumSpanningTree returns the n-1 edges of a minimum spanning tree over
// the complete graph of points, using Euclidean distances as weights
// (Kruskal's algorithm). Among equal weights, the edge whose endpoints come
// first in points wins, so the result is deterministic. Edges are returned
// in the order they were added and always have From < To.
func MinimumSpanningTree(points []Point) []Edge {
	n := len(points)
	if n < 2 {
		return nil
	}

	edges := make([]Edge, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			edges = append(edges, Edge{From: i, To: j, Weight: distance(points[i], points[j])})
		}
	}

	// Candidates were generated in (i, j) order, so a stable sort keeps that
	// order among ties.
	sort.SliceStable(edges, func(a, b int) bool { return edges[a].Weight < edges[b].Weight })

	uf := unionfind.New(n)
	out := make([]Edge, 0, n-1)
	for _, e := range edges {
		if uf.Root(e.From) == uf.Root(e.To) {
			continue
		}
		uf.Union(e.From, e.To)
		out = append(out, e)

		if len(out) == n-1 {
			break
		}
	}

	return out
}

// TreeWeight sums the weights of edges.
func TreeWeight(edges []Edge) float64 {
	w := make([]float64, len(edges))
	for i, e := range edges {
		w[i] = e.Weight
	}
	return floats.Sum(w)
}

func distance(a, b Point) float64 {
	return floats.Distance(a[:], b[:], 2)
}

func finite(p Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
