package graph

import (
	"bytes"
	"iter"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
)

const (
	// DefaultVisitLimit bounds every traversal (merge, collection, digest).
	// Visited sets already guarantee termination on cycles; the limit only
	// catches runaway growth.
	DefaultVisitLimit = 1 << 24

	// DefaultInlineEdges is the edge count up to which a vertex's edge table
	// is scanned linearly instead of indexed.
	DefaultInlineEdges = 8
)

// ID is the identity of a vertex. Identities are unique among live vertices
// and may be recycled after removal.
type ID uint32

// String renders the identity the way object runtimes print it ("ν42").
func (id ID) String() string {
	return "ν" + strconv.FormatUint(uint64(id), 10)
}

// ParseID parses "42" or "ν42".
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseUint(strings.TrimPrefix(s, "ν"), 10, 32)
	if err != nil {
		return 0, err
	}
	return ID(n), nil
}

type vertex struct {
	data    []byte
	hasData bool
	edges   edgeTable
}

// Graph is a directed graph with labeled edges whose vertices are objects
// and whose edges are named attributes. Cycles of any length, including
// self-loops, are allowed.
//
// The zero value is not usable - use New to create a Graph.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	vertices   map[ID]*vertex
	free       []ID // recycled identities, ascending
	next       ID
	root       ID
	edgeCount  int
	visitLimit int
	inline     int
}

// Option configures a Graph at construction.
type Option func(*Graph)

// WithRoot sets the distinguished root identity (default 0). The root is
// the default collection root and path-resolution entry point; it is not
// created automatically.
func WithRoot(id ID) Option {
	return func(g *Graph) { g.root = id }
}

// WithCapacity preallocates room for n vertices.
func WithCapacity(n int) Option {
	return func(g *Graph) {
		if n > 0 {
			g.vertices = make(map[ID]*vertex, n)
		}
	}
}

// WithVisitLimit sets the traversal bound used to raise [ErrCycleGuard].
// Values <= 0 restore [DefaultVisitLimit].
func WithVisitLimit(n int) Option {
	return func(g *Graph) {
		if n <= 0 {
			n = DefaultVisitLimit
		}
		g.visitLimit = n
	}
}

// WithInlineEdges sets the edge-table size above which labels are indexed.
func WithInlineEdges(n int) Option {
	return func(g *Graph) {
		if n < 1 {
			n = 1
		}
		g.inline = n
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{
		vertices:   make(map[ID]*vertex),
		visitLimit: DefaultVisitLimit,
		inline:     DefaultInlineEdges,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Root returns the distinguished root identity.
func (g *Graph) Root() ID { return g.root }

// VisitLimit returns the traversal bound configured with [WithVisitLimit].
func (g *Graph) VisitLimit() int { return g.visitLimit }

// Options returns options that recreate this graph's configuration.
// Decoders and [Graph.Slice] use it to build compatible graphs.
func (g *Graph) Options() []Option {
	return []Option{WithRoot(g.root), WithVisitLimit(g.visitLimit), WithInlineEdges(g.inline)}
}

// Insert creates an empty vertex and returns its identity: the smallest
// recycled identity if any, otherwise the next unused one. It never fails;
// exhausting the 32-bit identity space panics.
func (g *Graph) Insert() ID {
	id := g.allocate()
	g.vertices[id] = &vertex{}
	return id
}

// NextID returns the identity the next [Graph.Insert] would return.
func (g *Graph) NextID() ID {
	for _, id := range g.free {
		if _, live := g.vertices[id]; !live {
			return id
		}
	}
	id := g.next
	for {
		if _, live := g.vertices[id]; !live {
			return id
		}
		id++
	}
}

func (g *Graph) allocate() ID {
	for len(g.free) > 0 {
		id := g.free[0]
		g.free = g.free[1:]
		if _, live := g.vertices[id]; !live {
			return id
		}
	}
	for {
		if g.next == math.MaxUint32 {
			panic("graph: identity space exhausted")
		}
		id := g.next
		g.next++
		if _, live := g.vertices[id]; !live {
			return id
		}
	}
}

// Add creates an empty vertex with a producer-chosen identity.
// Returns [ErrVertexExists] if id is live.
func (g *Graph) Add(id ID) error {
	if _, live := g.vertices[id]; live {
		return &VertexError{ID: id, Exists: true}
	}
	if i, ok := slices.BinarySearch(g.free, id); ok {
		g.free = slices.Delete(g.free, i, i+1)
	}
	g.vertices[id] = &vertex{}
	return nil
}

// Remove deletes the vertex, its edge table and every edge pointing at it,
// and returns its identity to the free pool. Returns [ErrVertexNotFound]
// if id is absent.
func (g *Graph) Remove(id ID) error {
	if _, ok := g.vertices[id]; !ok {
		return &VertexError{ID: id}
	}
	g.removeSet(map[ID]struct{}{id: {}})
	return nil
}

// RemoveAll deletes a batch of vertices in one pass over the graph, with
// the same semantics as calling [Graph.Remove] for each. It fails without
// removing anything if any identity is absent.
func (g *Graph) RemoveAll(ids []ID) error {
	set := make(map[ID]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := g.vertices[id]; !ok {
			return &VertexError{ID: id}
		}
		set[id] = struct{}{}
	}
	g.removeSet(set)
	return nil
}

func (g *Graph) removeSet(set map[ID]struct{}) {
	if len(set) == 0 {
		return
	}
	for id := range set {
		g.edgeCount -= g.vertices[id].edges.len()
		delete(g.vertices, id)
	}
	drop := func(to ID) bool { _, gone := set[to]; return gone }
	for _, v := range g.vertices {
		g.edgeCount -= v.edges.removeTargets(drop, g.inline)
	}
	for id := range set {
		g.free = append(g.free, id)
	}
	slices.Sort(g.free)
	g.free = slices.Compact(g.free)
}

// Exists reports whether id is live.
func (g *Graph) Exists(id ID) bool {
	_, ok := g.vertices[id]
	return ok
}

// SetPayload stores a copy of data on the vertex. An empty data slice is a
// present, zero-length payload, distinct from no payload at all.
func (g *Graph) SetPayload(id ID, data []byte) error {
	v, ok := g.vertices[id]
	if !ok {
		return &VertexError{ID: id}
	}
	v.data = append(make([]byte, 0, len(data)), data...)
	v.hasData = true
	return nil
}

// ClearPayload removes the payload of the vertex, if any.
func (g *Graph) ClearPayload(id ID) error {
	v, ok := g.vertices[id]
	if !ok {
		return &VertexError{ID: id}
	}
	v.data, v.hasData = nil, false
	return nil
}

// Payload returns a copy of the vertex payload. It reports false if the
// vertex is absent or carries no payload.
func (g *Graph) Payload(id ID) ([]byte, bool) {
	v, ok := g.vertices[id]
	if !ok || !v.hasData {
		return nil, false
	}
	return append(make([]byte, 0, len(v.data)), v.data...), true
}

// Len returns the number of live vertices.
func (g *Graph) Len() int { return len(g.vertices) }

// EdgeCount returns the total number of edges.
func (g *Graph) EdgeCount() int { return g.edgeCount }

// IDs returns all live identities in ascending order.
func (g *Graph) IDs() []ID {
	return slices.Sorted(maps.Keys(g.vertices))
}

// All iterates over live identities in ascending order. The snapshot is
// taken when iteration starts, so removing vertices inside the loop is safe.
func (g *Graph) All() iter.Seq[ID] {
	return func(yield func(ID) bool) {
		for _, id := range g.IDs() {
			if !yield(id) {
				return
			}
		}
	}
}

// Clone returns a deep copy, including the free pool.
func (g *Graph) Clone() *Graph {
	c := &Graph{
		vertices:   make(map[ID]*vertex, len(g.vertices)),
		free:       slices.Clone(g.free),
		next:       g.next,
		root:       g.root,
		edgeCount:  g.edgeCount,
		visitLimit: g.visitLimit,
		inline:     g.inline,
	}
	for id, v := range g.vertices {
		c.vertices[id] = &vertex{
			data:    bytes.Clone(v.data),
			hasData: v.hasData,
			edges:   v.edges.clone(),
		}
	}
	return c
}

// Equal reports whether both graphs hold the same identities, the same
// labeled edges and the same payloads. Edge order and free-pool state are
// not compared.
func (g *Graph) Equal(other *Graph) bool {
	if len(g.vertices) != len(other.vertices) || g.edgeCount != other.edgeCount {
		return false
	}
	for id, v := range g.vertices {
		o, ok := other.vertices[id]
		if !ok || v.hasData != o.hasData || !bytes.Equal(v.data, o.data) {
			return false
		}
		if v.edges.len() != o.edges.len() {
			return false
		}
		for _, e := range v.edges.entries {
			if to, ok := o.edges.get(e.Label); !ok || to != e.To {
				return false
			}
		}
	}
	return true
}

// Validate checks internal consistency: every edge targets a live vertex
// and carries a valid label. Returns [ErrDanglingEdge] or [ErrInvalidLabel].
func (g *Graph) Validate() error {
	for _, id := range g.IDs() {
		for _, e := range g.vertices[id].edges.entries {
			if err := ValidateLabel(e.Label); err != nil {
				return err
			}
			if _, ok := g.vertices[e.To]; !ok {
				return &DanglingEdgeError{From: id, Label: e.Label, To: e.To}
			}
		}
	}
	return nil
}
