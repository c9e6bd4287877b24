package graph

import (
	"fmt"
	"iter"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLabelLength is the longest label, in bytes, that [ValidateLabel] accepts.
const MaxLabelLength = 256

// Edge is one entry of a vertex's edge table: a label and its target.
type Edge struct {
	Label string
	To    ID
}

// ValidateLabel checks that label can name an attribute. Labels must be
// non-empty valid UTF-8 of at most [MaxLabelLength] bytes, and must not
// contain the path separators '.' and '/', whitespace, control characters,
// or code points outside the XML 1.0 character set (U+FFFE, U+FFFF).
// Greek labels used by object runtimes ("φ", "ρ", "α0") are valid.
func ValidateLabel(label string) error {
	if label == "" {
		return &LabelError{Label: label, Reason: "empty"}
	}
	if !utf8.ValidString(label) {
		return &LabelError{Label: label, Reason: "not valid UTF-8"}
	}
	if len(label) > MaxLabelLength {
		return &LabelError{Label: truncate(label, 16), Reason: fmt.Sprintf("longer than %d bytes", MaxLabelLength)}
	}
	if strings.ContainsAny(label, "./") {
		return &LabelError{Label: label, Reason: "contains a path separator"}
	}
	for _, r := range label {
		if unicode.IsSpace(r) || unicode.IsControl(r) {
			return &LabelError{Label: label, Reason: "contains whitespace or control characters"}
		}
		if !xmlChar(r) {
			return &LabelError{Label: label, Reason: fmt.Sprintf("contains %U, which XML cannot represent", r)}
		}
	}
	return nil
}

// xmlChar reports whether r is in the XML 1.0 Char production.
func xmlChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
	case r >= 0x20 && r <= 0xD7FF:
	case r >= 0xE000 && r <= 0xFFFD:
	case r >= 0x10000 && r <= 0x10FFFF:
	default:
		return false
	}
	return true
}

// truncate shortens valid UTF-8 s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n] + "..."
}

// edgeTable maps labels to targets in insertion order. Small tables are
// scanned linearly; above the inline threshold a label index is kept.
type edgeTable struct {
	entries []Edge
	index   map[string]int
}

func (t *edgeTable) len() int { return len(t.entries) }

func (t *edgeTable) find(label string) int {
	if t.index != nil {
		if i, ok := t.index[label]; ok {
			return i
		}
		return -1
	}
	for i := range t.entries {
		if t.entries[i].Label == label {
			return i
		}
	}
	return -1
}

func (t *edgeTable) get(label string) (ID, bool) {
	if i := t.find(label); i >= 0 {
		return t.entries[i].To, true
	}
	return 0, false
}

// put inserts or overwrites label. It reports whether an edge was replaced.
func (t *edgeTable) put(label string, to ID, inline int) bool {
	if i := t.find(label); i >= 0 {
		t.entries[i].To = to
		return true
	}
	t.entries = append(t.entries, Edge{Label: label, To: to})
	if t.index != nil {
		t.index[label] = len(t.entries) - 1
	} else if len(t.entries) > inline {
		t.reindex()
	}
	return false
}

// remove deletes label, keeping the order of the remaining entries.
func (t *edgeTable) remove(label string, inline int) bool {
	i := t.find(label)
	if i < 0 {
		return false
	}
	t.entries = append(t.entries[:i], t.entries[i+1:]...)
	t.shrink(inline)
	return true
}

// removeTargets drops every edge whose target satisfies drop and returns
// how many were removed.
func (t *edgeTable) removeTargets(drop func(ID) bool, inline int) int {
	kept := t.entries[:0]
	for _, e := range t.entries {
		if !drop(e.To) {
			kept = append(kept, e)
		}
	}
	n := len(t.entries) - len(kept)
	clear(t.entries[len(kept):])
	t.entries = kept
	if n > 0 {
		t.shrink(inline)
	}
	return n
}

func (t *edgeTable) shrink(inline int) {
	if t.index == nil {
		return
	}
	if len(t.entries) <= inline/2 {
		t.index = nil
		return
	}
	t.reindex()
}

func (t *edgeTable) reindex() {
	t.index = make(map[string]int, len(t.entries))
	for i, e := range t.entries {
		t.index[e.Label] = i
	}
}

func (t *edgeTable) clone() edgeTable {
	c := edgeTable{entries: append([]Edge(nil), t.entries...)}
	if t.index != nil {
		c.reindex()
	}
	return c
}

// Connect adds the edge from -label-> to, replacing any existing edge with
// the same label on from. Returns [ErrVertexNotFound] if either endpoint is
// absent and [ErrInvalidLabel] if the label fails [ValidateLabel].
func (g *Graph) Connect(from ID, label string, to ID) error {
	src, ok := g.vertices[from]
	if !ok {
		return &VertexError{ID: from}
	}
	if _, ok := g.vertices[to]; !ok {
		return &VertexError{ID: to}
	}
	if err := ValidateLabel(label); err != nil {
		return err
	}
	if !src.edges.put(label, to, g.inline) {
		g.edgeCount++
	}
	return nil
}

// Disconnect removes the edge with the given label from from.
// Returns [ErrVertexNotFound] or [ErrEdgeNotFound].
func (g *Graph) Disconnect(from ID, label string) error {
	src, ok := g.vertices[from]
	if !ok {
		return &VertexError{ID: from}
	}
	if !src.edges.remove(label, g.inline) {
		return &EdgeError{From: from, Label: label}
	}
	g.edgeCount--
	return nil
}

// Target returns the identity the labeled edge of from points to.
// It reports false when from is absent or has no such edge.
func (g *Graph) Target(from ID, label string) (ID, bool) {
	v, ok := g.vertices[from]
	if !ok {
		return 0, false
	}
	return v.edges.get(label)
}

// Labels returns the labels of from in insertion order.
func (g *Graph) Labels(from ID) ([]string, error) {
	v, ok := g.vertices[from]
	if !ok {
		return nil, &VertexError{ID: from}
	}
	labels := make([]string, len(v.edges.entries))
	for i, e := range v.edges.entries {
		labels[i] = e.Label
	}
	return labels, nil
}

// Edges returns a copy of the edge table of from in insertion order.
func (g *Graph) Edges(from ID) ([]Edge, error) {
	v, ok := g.vertices[from]
	if !ok {
		return nil, &VertexError{ID: from}
	}
	return append([]Edge(nil), v.edges.entries...), nil
}

// Kids iterates over the edges of from as (label, target) pairs.
// An absent vertex yields nothing. The graph must not be mutated while
// iterating.
func (g *Graph) Kids(from ID) iter.Seq2[string, ID] {
	return func(yield func(string, ID) bool) {
		v, ok := g.vertices[from]
		if !ok {
			return
		}
		for _, e := range v.edges.entries {
			if !yield(e.Label, e.To) {
				return
			}
		}
	}
}

// Degree returns the number of outgoing edges of from, or 0 if absent.
func (g *Graph) Degree(from ID) int {
	if v, ok := g.vertices[from]; ok {
		return v.edges.len()
	}
	return 0
}
