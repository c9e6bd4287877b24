// Package graphtest builds graphs for tests.
package graphtest

import (
	"fmt"
	"math/rand/v2"

	"github.com/matzehuels/objgraph/pkg/graph"
)

// Random builds a graph with n vertices (identities 0..n-1) and roughly
// edges random labeled edges, including self-loops and cycles. About half of
// the vertices get a payload, some of them empty. The same seed always
// yields the same graph.
func Random(seed uint64, n, edges int) *graph.Graph {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	g := graph.New()
	for i := 0; i < n; i++ {
		id := g.Insert()
		switch r.IntN(4) {
		case 0:
			data := make([]byte, 1+r.IntN(12))
			for j := range data {
				data[j] = byte(r.UintN(256))
			}
			_ = g.SetPayload(id, data)
		case 1:
			_ = g.SetPayload(id, []byte{})
		}
	}
	if n == 0 {
		return g
	}
	labels := []string{"φ", "ρ", "σ", "α0", "α1", "x", "y", "next", "prev", "Δ"}
	for i := 0; i < edges; i++ {
		from := graph.ID(r.IntN(n))
		to := graph.ID(r.IntN(n))
		label := labels[r.IntN(len(labels))]
		if r.IntN(5) == 0 {
			label = fmt.Sprintf("a%d", r.IntN(40))
		}
		_ = g.Connect(from, label, to)
	}
	return g
}

// Chain builds 0 -next-> 1 -next-> ... -> n-1.
func Chain(n int) *graph.Graph {
	g := graph.New()
	for i := 0; i < n; i++ {
		id := g.Insert()
		if i > 0 {
			_ = g.Connect(id-1, "next", id)
		}
	}
	return g
}
