package gc

import (
	"errors"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/objgraph/pkg/graph"
	"github.com/matzehuels/objgraph/pkg/observability"
)

// ErrBusy is returned when a collection is started from inside another one,
// for example by a hook that calls back into the collector.
var ErrBusy = errors.New("gc: collection already in progress")

// State is the phase of a [Collector].
type State int

const (
	Idle State = iota
	Marking
	Sweeping
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Marking:
		return "marking"
	case Sweeping:
		return "sweeping"
	default:
		return "unknown"
	}
}

// Report describes one collection.
type Report struct {
	Roots     []graph.ID // roots the collection started from
	Reachable int        // vertices that survived
	Removed   []graph.ID // reclaimed identities, ascending
	Duration  time.Duration
}

// Collector runs mark/sweep over a single graph.
//
// The zero value is not usable - use New.
// Collector is not safe for concurrent use.
type Collector struct {
	g      *graph.Graph
	state  State
	logger *log.Logger
	hooks  observability.GCHooks
}

// Option configures a Collector.
type Option func(*Collector)

// WithLogger sets a logger for debug progress events. Nil disables logging.
func WithLogger(l *log.Logger) Option {
	return func(c *Collector) { c.logger = l }
}

// WithHooks sets the instrumentation hooks. Nil restores the no-op hooks.
func WithHooks(h observability.GCHooks) Option {
	return func(c *Collector) {
		if h == nil {
			h = observability.NoopGCHooks{}
		}
		c.hooks = h
	}
}

// New creates a collector for g.
func New(g *graph.Graph, opts ...Option) *Collector {
	c := &Collector{g: g, hooks: observability.NoopGCHooks{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current phase. Outside of a running collection it is
// always [Idle].
func (c *Collector) State() State { return c.state }

// Mark returns the set of identities reachable from roots without changing
// the graph. With no roots the graph's root is used.
//
// Returns [graph.ErrVertexNotFound] if a root is absent,
// [graph.ErrDanglingEdge] if an edge targets an absent vertex and
// [graph.ErrCycleGuard] if the walk exceeds the graph's visit limit.
func (c *Collector) Mark(roots ...graph.ID) (map[graph.ID]struct{}, error) {
	if c.state != Idle {
		return nil, ErrBusy
	}
	c.state = Marking
	defer func() { c.state = Idle }()
	marked, _, err := c.mark(c.rootsOrDefault(roots))
	return marked, err
}

// Unreachable returns, in ascending order, the identities a collection from
// roots would remove. The graph is not changed.
func (c *Collector) Unreachable(roots ...graph.ID) ([]graph.ID, error) {
	marked, err := c.Mark(roots...)
	if err != nil {
		return nil, err
	}
	return c.unmarked(marked), nil
}

// Collect marks from roots and removes every vertex that was not reached.
// With no roots the graph's root is used. On error the graph is unchanged.
func (c *Collector) Collect(roots ...graph.ID) (Report, error) {
	if c.state != Idle {
		return Report{}, ErrBusy
	}
	defer func() { c.state = Idle }()

	start := time.Now()
	roots = c.rootsOrDefault(roots)

	c.state = Marking
	marked, markTime, err := c.mark(roots)
	if err != nil {
		return Report{}, err
	}

	c.state = Sweeping
	sweepStart := time.Now()
	dead := c.unmarked(marked)
	if err := c.g.RemoveAll(dead); err != nil {
		return Report{}, err
	}
	sweepTime := time.Since(sweepStart)
	c.hooks.OnSweepComplete(len(dead), c.g.Len(), sweepTime)

	report := Report{
		Roots:     roots,
		Reachable: len(marked),
		Removed:   dead,
		Duration:  time.Since(start),
	}
	if c.logger != nil {
		c.logger.Debug("gc complete",
			"roots", len(roots),
			"reachable", report.Reachable,
			"removed", len(dead),
			"mark", markTime.Round(time.Microsecond),
			"sweep", sweepTime.Round(time.Microsecond))
	}
	return report, nil
}

func (c *Collector) rootsOrDefault(roots []graph.ID) []graph.ID {
	if len(roots) == 0 {
		return []graph.ID{c.g.Root()}
	}
	roots = slices.Clone(roots)
	slices.Sort(roots)
	return slices.Compact(roots)
}

func (c *Collector) mark(roots []graph.ID) (map[graph.ID]struct{}, time.Duration, error) {
	start := time.Now()
	marked, err := c.walk(roots)
	d := time.Since(start)
	c.hooks.OnMarkComplete(len(roots), len(marked), d, err)
	if err != nil {
		return nil, d, err
	}
	return marked, d, nil
}

func (c *Collector) walk(roots []graph.ID) (map[graph.ID]struct{}, error) {
	limit := c.g.VisitLimit()
	marked := make(map[graph.ID]struct{}, len(roots))
	queue := make([]graph.ID, 0, len(roots))
	for _, r := range roots {
		if !c.g.Exists(r) {
			return nil, &graph.VertexError{ID: r}
		}
		marked[r] = struct{}{}
		queue = append(queue, r)
	}

	for i := 0; i < len(queue); i++ {
		if i >= limit {
			return nil, &graph.CycleGuardError{Op: "gc", Limit: limit}
		}
		id := queue[i]
		for label, to := range c.g.Kids(id) {
			if _, seen := marked[to]; seen {
				continue
			}
			if !c.g.Exists(to) {
				return nil, &graph.DanglingEdgeError{From: id, Label: label, To: to}
			}
			marked[to] = struct{}{}
			queue = append(queue, to)
		}
	}
	return marked, nil
}

func (c *Collector) unmarked(marked map[graph.ID]struct{}) []graph.ID {
	var dead []graph.ID
	for _, id := range c.g.IDs() {
		if _, ok := marked[id]; !ok {
			dead = append(dead, id)
		}
	}
	return dead
}

// Collect is a shorthand for New(g).Collect(roots...).
func Collect(g *graph.Graph, roots ...graph.ID) (Report, error) {
	return New(g).Collect(roots...)
}
