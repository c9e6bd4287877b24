// Package cli implements the objgraph command-line interface.
//
// The commands load graphs from files (binary, XML or zstd, chosen by
// extension or content), run one engine operation and write the result
// back. Configuration comes from an optional objgraph.toml or objgraph.yaml
// and the CLI is built using cobra with charmbracelet/log for progress.
//
// # Commands
//
// The main commands are:
//   - convert: Re-encode a graph in another format
//   - inspect, stats, resolve: Look at a graph without changing it
//   - gc: Remove vertices unreachable from the roots
//   - digest: Print content digests and duplicate groups
//   - merge: Merge one graph into another at an anchor vertex
//   - script: Build a graph from ADD/BIND/PUT instructions
//   - render: Draw a graph as DOT, SVG, PDF or PNG
//   - snapshot: Save and load graphs in the configured store
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context, and the collector and store report their
// events through log-backed hooks when verbose.
//
// # Example
//
//	import "github.com/matzehuels/objgraph/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/objgraph/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
// It is safe for sequential use by a single goroutine; concurrent calls to done will race.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
// The returned progress should call done when the operation completes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// The duration is rounded to the nearest millisecond.
// Example output: "Collected 42 vertices (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// ctxKey is the type for context keys used in this package.
// Using a distinct type prevents collisions with other packages.
type ctxKey int

// loggerKey is the context key for storing a logger.
const loggerKey ctxKey = 0

// withLogger returns a new context with the given logger attached.
// The logger can be retrieved later with loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext retrieves the logger from ctx.
// If no logger is attached, it returns log.Default().
// This ensures commands always have a valid logger even if context setup fails.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}

// verbose reports whether l emits debug messages.
func verbose(l *log.Logger) bool {
	return l.GetLevel() <= log.DebugLevel
}

// gcHooks returns log-backed collector hooks when l is verbose and no-op
// hooks otherwise.
func gcHooks(l *log.Logger) observability.GCHooks {
	if verbose(l) {
		return observability.NewLogGCHooks(l)
	}
	return observability.NoopGCHooks{}
}

// storeHooks is the store counterpart of gcHooks. A nil result leaves the
// store uninstrumented.
func storeHooks(l *log.Logger) observability.StoreHooks {
	if verbose(l) {
		return observability.NewLogStoreHooks(l)
	}
	return nil
}
