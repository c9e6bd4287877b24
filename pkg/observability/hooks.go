// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on specific observability backends to the graph engine.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Hand implementations to the components that emit events
//
// There is no global registry: a collector or store receives its hooks at
// construction, so two graphs in one process can be instrumented
// differently and nothing in the engine holds hidden mutable state.
//
// # Usage
//
//	c := gc.New(g, gc.WithHooks(observability.NewLogGCHooks(logger)))
//	s := store.Instrument(fileStore, myStoreHooks)
package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// =============================================================================
// GC Hooks
// =============================================================================

// GCHooks receives events from the mark/sweep collector.
type GCHooks interface {
	// OnMarkComplete is called after marking with the number of roots and
	// reachable vertices. err is non-nil if marking failed.
	OnMarkComplete(roots, reachable int, duration time.Duration, err error)

	// OnSweepComplete is called after sweeping with the number of removed
	// vertices and the live count left behind.
	OnSweepComplete(removed, live int, duration time.Duration)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from snapshot store operations.
type StoreHooks interface {
	// OnStoreHit records a successful lookup.
	OnStoreHit(ctx context.Context, key string)

	// OnStoreMiss records a lookup for an absent key.
	OnStoreMiss(ctx context.Context, key string)

	// OnStoreSet records a write.
	OnStoreSet(ctx context.Context, key string, size int)

	// OnStoreError records a backend failure.
	OnStoreError(ctx context.Context, op, key string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopGCHooks is a no-op implementation of GCHooks.
type NoopGCHooks struct{}

func (NoopGCHooks) OnMarkComplete(int, int, time.Duration, error) {}
func (NoopGCHooks) OnSweepComplete(int, int, time.Duration)       {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnStoreHit(context.Context, string)                  {}
func (NoopStoreHooks) OnStoreMiss(context.Context, string)                 {}
func (NoopStoreHooks) OnStoreSet(context.Context, string, int)             {}
func (NoopStoreHooks) OnStoreError(context.Context, string, string, error) {}

// =============================================================================
// Logging Implementations
// =============================================================================

// LogGCHooks writes collector events to a charmbracelet logger at debug level.
type LogGCHooks struct {
	Logger *log.Logger
}

// NewLogGCHooks returns GC hooks logging to l, or to log.Default() if nil.
func NewLogGCHooks(l *log.Logger) *LogGCHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogGCHooks{Logger: l}
}

func (h *LogGCHooks) OnMarkComplete(roots, reachable int, d time.Duration, err error) {
	if err != nil {
		h.Logger.Warn("gc mark failed", "roots", roots, "err", err)
		return
	}
	h.Logger.Debug("gc mark", "roots", roots, "reachable", reachable, "took", d.Round(time.Microsecond))
}

func (h *LogGCHooks) OnSweepComplete(removed, live int, d time.Duration) {
	h.Logger.Debug("gc sweep", "removed", removed, "live", live, "took", d.Round(time.Microsecond))
}

// LogStoreHooks writes store events to a charmbracelet logger at debug level.
type LogStoreHooks struct {
	Logger *log.Logger
}

// NewLogStoreHooks returns store hooks logging to l, or to log.Default() if nil.
func NewLogStoreHooks(l *log.Logger) *LogStoreHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogStoreHooks{Logger: l}
}

func (h *LogStoreHooks) OnStoreHit(_ context.Context, key string) {
	h.Logger.Debug("store hit", "key", key)
}

func (h *LogStoreHooks) OnStoreMiss(_ context.Context, key string) {
	h.Logger.Debug("store miss", "key", key)
}

func (h *LogStoreHooks) OnStoreSet(_ context.Context, key string, size int) {
	h.Logger.Debug("store set", "key", key, "bytes", size)
}

func (h *LogStoreHooks) OnStoreError(_ context.Context, op, key string, err error) {
	h.Logger.Warn("store error", "op", op, "key", key, "err", err)
}
