package graph

import "fmt"

// MergePolicy decides what happens to the payload of a destination vertex
// that already existed before the merge and was unified with a source
// vertex. Vertices created by the merge always receive the source payload.
//
// A destination vertex unified with several source vertices is settled by
// the first pair that reaches it in breadth-first order; later pairs never
// write its payload. Merging the same source again therefore reaches the
// same decision and changes nothing.
type MergePolicy int

const (
	// MergeKeep leaves existing destination payloads untouched.
	MergeKeep MergePolicy = iota
	// MergeFill copies the source payload only when the destination vertex
	// has none.
	MergeFill
	// MergeOverwrite copies the payload of the first source vertex unified
	// with the destination vertex, when that source vertex has one.
	MergeOverwrite
)

var policyNames = map[MergePolicy]string{
	MergeKeep:      "keep",
	MergeFill:      "fill",
	MergeOverwrite: "overwrite",
}

func (p MergePolicy) String() string {
	if s, ok := policyNames[p]; ok {
		return s
	}
	return fmt.Sprintf("MergePolicy(%d)", int(p))
}

// ParseMergePolicy parses "keep", "fill" or "overwrite".
func ParseMergePolicy(s string) (MergePolicy, error) {
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown merge policy %q", s)
}

// MergeOptions configures [Graph.Merge].
type MergeOptions struct {
	Policy MergePolicy
}

// MergeReport summarizes what a merge changed.
type MergeReport struct {
	Created   int // destination vertices inserted
	Connected int // destination edges added
	Reused    int // source edges matched by an existing destination label
	Updated   int // existing destination payloads written by the policy
	Visited   int // (source, destination) pairs processed
}

// Changed reports whether the merge modified the destination.
func (r MergeReport) Changed() bool {
	return r.Created > 0 || r.Connected > 0 || r.Updated > 0
}

type mergePair struct{ src, dst ID }

// Merge unifies the structure reachable from src's root into g at anchor.
// See [Graph.MergeFrom].
func (g *Graph) Merge(src *Graph, anchor ID, opts MergeOptions) (MergeReport, error) {
	return g.MergeFrom(src, src.Root(), anchor, opts)
}

// MergeFrom unifies the structure reachable from start in src into g,
// identifying vertices by attribute path rather than identity.
//
// The traversal is breadth-first over (source, destination) pairs starting
// at (start, anchor). For each source edge, an existing destination edge
// with the same label is followed; otherwise the destination gets a new edge,
// either to the vertex the source child was already unified with (shared
// children and cycles) or to a freshly inserted vertex that receives the
// child's payload. A visited-pair set stops re-descent on cycles.
//
// Merge is additive: no destination vertex or edge is removed or retargeted,
// and merging the same source twice changes nothing the second time.
// Returns [ErrVertexNotFound] for an absent start or anchor and
// [ErrCycleGuard] if the pair count exceeds the visit limit.
func (g *Graph) MergeFrom(src *Graph, start, anchor ID, opts MergeOptions) (MergeReport, error) {
	var rep MergeReport
	if src == g {
		src = g.Clone()
	}
	if !src.Exists(start) {
		return rep, &VertexError{ID: start}
	}
	if !g.Exists(anchor) {
		return rep, &VertexError{ID: anchor}
	}

	first := mergePair{src: start, dst: anchor}
	queue := []mergePair{first}
	visited := map[mergePair]struct{}{first: {}}
	mapped := map[ID]ID{start: anchor}
	settled := make(map[ID]struct{})

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		rep.Visited++
		if rep.Visited > g.visitLimit {
			return rep, &CycleGuardError{Op: "merge", Limit: g.visitLimit}
		}

		sv, dv := src.vertices[p.src], g.vertices[p.dst]
		if _, done := settled[p.dst]; !done {
			settled[p.dst] = struct{}{}
			if applyPolicy(opts.Policy, sv, dv) {
				rep.Updated++
			}
		}

		for _, e := range sv.edges.entries {
			next, ok := dv.edges.get(e.Label)
			if ok {
				rep.Reused++
				if _, seen := mapped[e.To]; !seen {
					mapped[e.To] = next
				}
			} else {
				if next, ok = mapped[e.To]; !ok {
					next = g.insertCopy(src.vertices[e.To])
					settled[next] = struct{}{}
					mapped[e.To] = next
					rep.Created++
				}
				dv.edges.put(e.Label, next, g.inline)
				g.edgeCount++
				rep.Connected++
			}

			q := mergePair{src: e.To, dst: next}
			if _, seen := visited[q]; !seen {
				visited[q] = struct{}{}
				queue = append(queue, q)
			}
		}
	}
	return rep, nil
}

// insertCopy inserts a vertex carrying a copy of v's payload (not its edges).
func (g *Graph) insertCopy(v *vertex) ID {
	id := g.Insert()
	if v.hasData {
		nv := g.vertices[id]
		nv.data = append(make([]byte, 0, len(v.data)), v.data...)
		nv.hasData = true
	}
	return id
}

// applyPolicy writes the source payload onto an existing destination vertex
// when the policy asks for it, and reports whether anything changed.
func applyPolicy(p MergePolicy, sv, dv *vertex) bool {
	if !sv.hasData {
		return false
	}
	switch p {
	case MergeFill:
		if dv.hasData {
			return false
		}
	case MergeOverwrite:
		if dv.hasData && string(dv.data) == string(sv.data) {
			return false
		}
	default:
		return false
	}
	dv.data = append(make([]byte, 0, len(sv.data)), sv.data...)
	dv.hasData = true
	return true
}
