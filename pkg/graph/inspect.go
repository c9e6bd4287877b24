package graph

import (
	"fmt"
	"strings"

	"github.com/matzehuels/objgraph/pkg/payload"
)

// Inspect renders the subgraph reachable from start as an indented tree,
// one edge per line. Each vertex is expanded once; later references are
// marked with "(seen)". The visit limit bounds the number of expanded
// vertices, not edges.
//
//	ν0
//	  .x -> ν1 [00-2A]
//	    .back -> ν0 (seen)
func (g *Graph) Inspect(start ID) (string, error) {
	v, ok := g.vertices[start]
	if !ok {
		return "", &VertexError{ID: start}
	}

	var b strings.Builder
	b.WriteString(start.String())
	writeData(&b, v)
	b.WriteByte('\n')

	type frame struct {
		id    ID
		depth int
		edge  Edge
	}
	var stack []frame
	push := func(id ID, depth int) {
		entries := g.vertices[id].edges.entries
		for i := len(entries) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: entries[i].To, depth: depth, edge: entries[i]})
		}
	}

	seen := map[ID]struct{}{start: {}}
	push(start, 1)
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		fmt.Fprintf(&b, "%s.%s -> %s", strings.Repeat("  ", f.depth), f.edge.Label, f.id)
		child, ok := g.vertices[f.id]
		switch {
		case !ok:
			b.WriteString(" (missing)\n")
			continue
		case isSeen(seen, f.id):
			b.WriteString(" (seen)\n")
			continue
		}
		if len(seen) >= g.visitLimit {
			return "", &CycleGuardError{Op: "inspect", Limit: g.visitLimit}
		}
		writeData(&b, child)
		b.WriteByte('\n')
		seen[f.id] = struct{}{}
		push(f.id, f.depth+1)
	}
	return b.String(), nil
}

func isSeen(seen map[ID]struct{}, id ID) bool {
	_, ok := seen[id]
	return ok
}

func writeData(b *strings.Builder, v *vertex) {
	if v.hasData {
		b.WriteString(" [")
		b.WriteString(payload.Print(v.data))
		b.WriteByte(']')
	}
}
