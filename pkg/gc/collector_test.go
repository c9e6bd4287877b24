package gc

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/objgraph/internal/graphtest"
	"github.com/matzehuels/objgraph/pkg/graph"
)

func TestCollectSelfLoop(t *testing.T) {
	g := graph.New()
	root := g.Insert()
	if err := g.Connect(root, "self", root); err != nil {
		t.Fatal(err)
	}

	rep, err := Collect(g, root)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Exists(root) {
		t.Fatal("root was collected")
	}
	if len(rep.Removed) != 0 || rep.Reachable != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestCollectRemovesUnreachable(t *testing.T) {
	g := graph.New()
	root, kept, orphan, orphanKid := g.Insert(), g.Insert(), g.Insert(), g.Insert()
	_ = g.Connect(root, "a", kept)
	_ = g.Connect(kept, "back", root)
	_ = g.Connect(orphan, "x", orphanKid)
	_ = g.Connect(orphanKid, "y", kept)

	rep, err := New(g).Collect()
	if err != nil {
		t.Fatal(err)
	}
	if want := []graph.ID{orphan, orphanKid}; !slices.Equal(rep.Removed, want) {
		t.Errorf("removed = %v, want %v", rep.Removed, want)
	}
	if got := g.IDs(); !slices.Equal(got, []graph.ID{root, kept}) {
		t.Errorf("live = %v", got)
	}
	if g.EdgeCount() != 2 {
		t.Errorf("edge count = %d, want 2", g.EdgeCount())
	}
	if next := g.Insert(); next != orphan {
		t.Errorf("reclaimed identity not recycled: got %s, want %s", next, orphan)
	}
}

func TestCollectKeepsIsolatedRoot(t *testing.T) {
	g := graph.New(graph.WithRoot(5))
	_ = g.Add(5)
	other := g.Insert()

	rep, err := Collect(g)
	if err != nil {
		t.Fatal(err)
	}
	if !g.Exists(5) || g.Exists(other) {
		t.Errorf("live = %v after collecting from root ν5", g.IDs())
	}
	if !slices.Equal(rep.Roots, []graph.ID{5}) {
		t.Errorf("roots = %v", rep.Roots)
	}
}

func TestCollectMultipleRoots(t *testing.T) {
	g := graphtest.Chain(6)
	_ = g.Disconnect(2, "next")

	rep, err := Collect(g, 0, 4, 4)
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(rep.Roots, []graph.ID{0, 4}) {
		t.Errorf("roots = %v, want deduplicated [ν0 ν4]", rep.Roots)
	}
	if want := []graph.ID{3}; !slices.Equal(rep.Removed, want) {
		t.Errorf("removed = %v, want %v", rep.Removed, want)
	}
}

func TestCollectIdempotent(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		g := graphtest.Random(seed, 40, 50)
		c := New(g)
		if _, err := c.Collect(0); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		before := g.Clone()
		rep, err := c.Collect(0)
		if err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if len(rep.Removed) != 0 {
			t.Errorf("seed %d: second run removed %v", seed, rep.Removed)
		}
		if !g.Equal(before) {
			t.Errorf("seed %d: second run changed the graph", seed)
		}
	}
}

func TestCollectMatchesReachability(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		g := graphtest.Random(seed, 50, 45)
		roots := []graph.ID{0, graph.ID(seed % 50)}

		want := map[graph.ID]bool{}
		for _, r := range roots {
			ids, err := g.Reachable(r)
			if err != nil {
				t.Fatal(err)
			}
			for _, id := range ids {
				want[id] = true
			}
		}

		if _, err := Collect(g, roots...); err != nil {
			t.Fatalf("seed %d: %v", seed, err)
		}
		if g.Len() != len(want) {
			t.Errorf("seed %d: %d live vertices, want %d", seed, g.Len(), len(want))
		}
		for id := range want {
			if !g.Exists(id) {
				t.Errorf("seed %d: reachable %s was removed", seed, id)
			}
		}
		if err := g.Validate(); err != nil {
			t.Errorf("seed %d: graph invalid after gc: %v", seed, err)
		}
	}
}

func TestCollectErrors(t *testing.T) {
	tests := []struct {
		name  string
		build func() *graph.Graph
		roots []graph.ID
		want  error
	}{
		{
			name:  "absent default root",
			build: func() *graph.Graph { return graph.New() },
			want:  graph.ErrVertexNotFound,
		},
		{
			name: "absent explicit root",
			build: func() *graph.Graph {
				g := graph.New()
				g.Insert()
				return g
			},
			roots: []graph.ID{0, 7},
			want:  graph.ErrVertexNotFound,
		},
		{
			name: "visit limit",
			build: func() *graph.Graph {
				g := graph.New(graph.WithVisitLimit(3))
				for i := 0; i < 10; i++ {
					if id := g.Insert(); i > 0 {
						_ = g.Connect(id-1, "next", id)
					}
				}
				return g
			},
			want: graph.ErrCycleGuard,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.build()
			before := g.Clone()
			_, err := Collect(g, tt.roots...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !g.Equal(before) {
				t.Error("failed collection changed the graph")
			}
		})
	}
}

func TestUnreachableIsDryRun(t *testing.T) {
	g := graphtest.Chain(3)
	loose := g.Insert()

	dead, err := New(g).Unreachable()
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(dead, []graph.ID{loose}) {
		t.Errorf("unreachable = %v", dead)
	}
	if !g.Exists(loose) {
		t.Error("dry run removed a vertex")
	}
}

type recordingHooks struct {
	states    []State
	c         *Collector
	marked    int
	removed   int
	reentered error
}

func (h *recordingHooks) OnMarkComplete(_, reachable int, _ time.Duration, err error) {
	h.states = append(h.states, h.c.State())
	if err == nil {
		h.marked = reachable
	}
}

func (h *recordingHooks) OnSweepComplete(removed, _ int, _ time.Duration) {
	h.states = append(h.states, h.c.State())
	h.removed = removed
	_, h.reentered = h.c.Collect()
}

func TestCollectorStatesAndHooks(t *testing.T) {
	g := graphtest.Chain(4)
	g.Insert()

	h := &recordingHooks{}
	var buf bytes.Buffer
	c := New(g, WithHooks(h), WithLogger(log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})))
	h.c = c

	if c.State() != Idle {
		t.Fatalf("initial state = %s", c.State())
	}
	if _, err := c.Collect(); err != nil {
		t.Fatal(err)
	}
	if want := []State{Marking, Sweeping}; !slices.Equal(h.states, want) {
		t.Errorf("states seen by hooks = %v, want %v", h.states, want)
	}
	if c.State() != Idle {
		t.Errorf("final state = %s", c.State())
	}
	if h.marked != 4 || h.removed != 1 {
		t.Errorf("hooks saw marked=%d removed=%d", h.marked, h.removed)
	}
	if !errors.Is(h.reentered, ErrBusy) {
		t.Errorf("re-entrant collection: err = %v, want ErrBusy", h.reentered)
	}
	if !strings.Contains(buf.String(), "gc complete") {
		t.Errorf("missing log line: %q", buf.String())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		s    State
		want string
	}{
		{Idle, "idle"},
		{Marking, "marking"},
		{Sweeping, "sweeping"},
		{State(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.s, got, tt.want)
		}
	}
}
