package graph

import "strings"

// SplitPath splits "a.b/c" into ["a", "b", "c"]. Both '.' and '/' separate
// labels; empty segments are dropped.
func SplitPath(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == '.' || r == '/' })
}

// Resolve follows path from the start vertex, one label per hop, and
// returns the identity reached. An empty path resolves to from itself.
//
// Returns [ErrVertexNotFound] if from is absent, or a [*PathError]
// (matching [ErrBrokenPath]) at the first missing hop. Resolution never
// returns a partial result and caches nothing between calls.
func (g *Graph) Resolve(from ID, path []string) (ID, error) {
	if _, ok := g.vertices[from]; !ok {
		return 0, &VertexError{ID: from}
	}
	cur := from
	for i, label := range path {
		next, ok := g.vertices[cur].edges.get(label)
		if !ok {
			return 0, &PathError{Path: path, Index: i, Last: cur, Label: label}
		}
		cur = next
	}
	return cur, nil
}

// ResolvePath is Resolve with a dotted or slashed path string.
func (g *Graph) ResolvePath(from ID, path string) (ID, error) {
	return g.Resolve(from, SplitPath(path))
}

// Walk is like Resolve but returns every identity on the way, starting with
// from. On failure it returns the identities reached before the broken hop
// together with the [*PathError].
func (g *Graph) Walk(from ID, path []string) ([]ID, error) {
	if _, ok := g.vertices[from]; !ok {
		return nil, &VertexError{ID: from}
	}
	trail := make([]ID, 1, len(path)+1)
	trail[0] = from
	for i, label := range path {
		cur := trail[len(trail)-1]
		next, ok := g.vertices[cur].edges.get(label)
		if !ok {
			return trail, &PathError{Path: path, Index: i, Last: cur, Label: label}
		}
		trail = append(trail, next)
	}
	return trail, nil
}
