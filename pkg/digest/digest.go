// Package digest computes content fingerprints of vertices and subgraphs.
//
// A vertex digest is a BLAKE3-256 hash over the vertex payload and the
// sorted (label, child digest) pairs of its edges. Identities do not
// contribute, so structurally equal subgraphs in different graphs (or in
// different places of one graph) share a digest. This makes digests suitable
// for deduplication and for stable debug names; they are never used for
// reachability or correctness.
//
// Cycles are cut with [Placeholder]: while a vertex is being digested, a
// reference back to it contributes the placeholder instead of recursing.
// Within a cycle the digest therefore depends on the starting vertex, which
// is why [Of] is defined per start vertex rather than per graph.
package digest

import (
	"cmp"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"lukechampine.com/blake3"

	"github.com/matzehuels/objgraph/pkg/graph"
)

// Size is the length of a digest in bytes.
const Size = 32

// Digest is a BLAKE3-256 fingerprint.
type Digest [Size]byte

// Placeholder is what a back-reference to a vertex already being digested
// contributes in place of its digest.
var Placeholder = Digest(blake3.Sum256([]byte("objgraph/digest/placeholder")))

// ErrInvalidDigest is returned by [Parse] for text that is not 64 hex digits.
var ErrInvalidDigest = errors.New("invalid digest")

// String returns the lowercase hex form.
func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Short returns the first 8 hex digits, enough for debug output.
func (d Digest) Short() string { return d.String()[:8] }

// IsZero reports whether d is the zero value.
func (d Digest) IsZero() bool { return d == Digest{} }

// MarshalText implements encoding.TextMarshaler.
func (d Digest) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Digest) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Parse parses the hex form produced by [Digest.String].
func Parse(s string) (Digest, error) {
	var d Digest
	s = strings.TrimSpace(s)
	if len(s) != 2*Size {
		return d, fmt.Errorf("%w: want %d hex digits, got %d", ErrInvalidDigest, 2*Size, len(s))
	}
	if _, err := hex.Decode(d[:], []byte(s)); err != nil {
		return d, fmt.Errorf("%w: %v", ErrInvalidDigest, err)
	}
	return d, nil
}

// Of returns the digest of the subgraph reachable from id.
//
// Returns [graph.ErrVertexNotFound] if id is absent, [graph.ErrDanglingEdge]
// if an edge targets an absent vertex and [graph.ErrCycleGuard] if the walk
// exceeds the graph's visit limit.
func Of(g *graph.Graph, id graph.ID) (Digest, error) {
	return newDigester(g).digest(id)
}

// All returns the digest of every live vertex; each entry equals what [Of]
// returns for that vertex. Acyclic subgraphs are hashed once and shared.
func All(g *graph.Graph) (map[graph.ID]Digest, error) {
	d := newDigester(g)
	out := make(map[graph.ID]Digest, g.Len())
	for id := range g.All() {
		sum, err := d.digest(id)
		if err != nil {
			return nil, err
		}
		out[id] = sum
	}
	return out, nil
}

// Duplicates returns groups of two or more vertices with equal digests.
// Identities within a group are ascending, and groups are ordered by their
// first identity.
func Duplicates(g *graph.Graph) ([][]graph.ID, error) {
	all, err := All(g)
	if err != nil {
		return nil, err
	}
	byDigest := make(map[Digest][]graph.ID)
	for _, id := range slices.Sorted(maps.Keys(all)) {
		byDigest[all[id]] = append(byDigest[all[id]], id)
	}
	var groups [][]graph.ID
	for _, ids := range byDigest {
		if len(ids) > 1 {
			groups = append(groups, ids)
		}
	}
	slices.SortFunc(groups, func(a, b []graph.ID) int { return cmp.Compare(a[0], b[0]) })
	return groups, nil
}

// Label returns a debug identifier "ν<id>#<short digest>".
func Label(g *graph.Graph, id graph.ID) (string, error) {
	d, err := Of(g, id)
	if err != nil {
		return "", err
	}
	return id.String() + "#" + d.Short(), nil
}

// Graph fingerprints an entire graph: every live identity together with its
// vertex digest. Unlike [Of], it distinguishes graphs that differ only in
// identities or in unreachable vertices, so it can key whole snapshots.
func Graph(g *graph.Graph) (Digest, error) {
	all, err := All(g)
	if err != nil {
		return Digest{}, err
	}
	h := blake3.New(Size, nil)
	var buf [binary.MaxVarintLen64]byte
	h.Write([]byte("g"))
	h.Write(buf[:binary.PutUvarint(buf[:], uint64(len(all)))])
	for _, id := range slices.Sorted(maps.Keys(all)) {
		h.Write(buf[:binary.PutUvarint(buf[:], uint64(id))])
		sum := all[id]
		h.Write(sum[:])
	}
	var d Digest
	h.Sum(d[:0])
	return d, nil
}

// =============================================================================
// Traversal
// =============================================================================

type frame struct {
	id     graph.ID
	edges  []graph.Edge // sorted by label
	next   int
	kids   []Digest
	cyclic bool // the subtree contributed a placeholder somewhere
}

type result struct {
	sum    Digest
	cyclic bool
}

type digester struct {
	g      *graph.Graph
	memo   map[graph.ID]Digest // acyclic subgraphs, valid across calls
	done   map[graph.ID]result // finished vertices of the current call
	onPath map[graph.ID]struct{}
	visits int
}

func newDigester(g *graph.Graph) *digester {
	return &digester{
		g:      g,
		memo:   make(map[graph.ID]Digest),
		done:   make(map[graph.ID]result),
		onPath: make(map[graph.ID]struct{}),
	}
}

// digest walks depth-first with an explicit stack. Within one call every
// vertex is hashed once. Digests of vertices whose subgraph never closed a
// cycle do not depend on where the walk started, so they are kept for later
// calls; anything that saw a placeholder is recomputed per call.
func (d *digester) digest(root graph.ID) (Digest, error) {
	if sum, ok := d.memo[root]; ok {
		return sum, nil
	}
	clear(d.done)
	clear(d.onPath)
	d.visits = 0

	var stack []*frame
	push := func(id graph.ID) error {
		d.visits++
		if limit := d.g.VisitLimit(); d.visits > limit {
			return &graph.CycleGuardError{Op: "digest", Limit: limit}
		}
		edges, err := d.g.Edges(id)
		if err != nil {
			return err
		}
		slices.SortFunc(edges, func(a, b graph.Edge) int { return strings.Compare(a.Label, b.Label) })
		d.onPath[id] = struct{}{}
		stack = append(stack, &frame{id: id, edges: edges, kids: make([]Digest, 0, len(edges))})
		return nil
	}

	if err := push(root); err != nil {
		return Digest{}, err
	}
	for {
		f := stack[len(stack)-1]
		if f.next < len(f.edges) {
			e := f.edges[f.next]
			if sum, ok := d.memo[e.To]; ok {
				f.kids = append(f.kids, sum)
				f.next++
				continue
			}
			if r, ok := d.done[e.To]; ok {
				f.kids = append(f.kids, r.sum)
				f.cyclic = f.cyclic || r.cyclic
				f.next++
				continue
			}
			if _, ok := d.onPath[e.To]; ok {
				f.kids = append(f.kids, Placeholder)
				f.cyclic = true
				f.next++
				continue
			}
			if !d.g.Exists(e.To) {
				return Digest{}, &graph.DanglingEdgeError{From: f.id, Label: e.Label, To: e.To}
			}
			if err := push(e.To); err != nil {
				return Digest{}, err
			}
			continue
		}

		sum := d.record(f)
		stack = stack[:len(stack)-1]
		delete(d.onPath, f.id)
		d.done[f.id] = result{sum: sum, cyclic: f.cyclic}
		if !f.cyclic {
			d.memo[f.id] = sum
		}
		if len(stack) == 0 {
			return sum, nil
		}
		parent := stack[len(stack)-1]
		parent.kids = append(parent.kids, sum)
		parent.cyclic = parent.cyclic || f.cyclic
		parent.next++
	}
}

// record hashes "v" | presence | uvarint(len) | payload | uvarint(edges) |
// (uvarint(len) label digest)*.
func (d *digester) record(f *frame) Digest {
	h := blake3.New(Size, nil)
	var buf [binary.MaxVarintLen64]byte
	uvarint := func(n int) { h.Write(buf[:binary.PutUvarint(buf[:], uint64(n))]) }

	h.Write([]byte("v"))
	data, ok := d.g.Payload(f.id)
	if ok {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	uvarint(len(data))
	h.Write(data)
	uvarint(len(f.edges))
	for i, e := range f.edges {
		uvarint(len(e.Label))
		h.Write([]byte(e.Label))
		h.Write(f.kids[i][:])
	}
	var sum Digest
	h.Sum(sum[:0])
	return sum
}
