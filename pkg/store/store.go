// Package store persists graph snapshots in key/value backends.
//
// # Overview
//
// A [Store] holds opaque byte values under string keys with an optional
// TTL. Four backends are provided:
//
//   - [FileStore]: one file per key under a directory, for CLI use
//   - [SQLiteStore]: a single SQLite database file
//   - [RedisStore]: a Redis server, for sharing snapshots between machines
//   - [NullStore]: stores nothing, for disabling persistence
//
// [ScopedStore] prefixes every key so that several tools can share one
// backend, and [Instrument] reports hits, misses and writes to
// [observability.StoreHooks].
//
// # Snapshots
//
// [SaveGraph] and [LoadGraph] store a graph under a caller-chosen key as a
// zstd-compressed binary document. [SaveContent] keys the snapshot by the
// digest of the whole graph, so saving an unchanged graph twice writes the
// same key:
//
//	s, _ := store.NewFileStore(dir)
//	key, err := store.SaveContent(ctx, s, g, 0)
//	...
//	g2, err := store.LoadGraph(ctx, s, key)
//
// [observability.StoreHooks]: github.com/matzehuels/objgraph/pkg/observability.StoreHooks
package store

import (
	"context"
	"time"
)

// Store is a key/value backend for snapshots.
//
// Get reports a missing or expired key as (nil, false, nil); only backend
// failures are errors. A ttl of 0 means the value never expires.
// Implementations are safe for concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}
