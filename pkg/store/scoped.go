package store

import (
	"context"
	"time"
)

// ScopedStore prefixes every key of an inner store, giving each user of a
// shared backend its own namespace:
//
//	team := store.NewScopedStore(redisStore, "team-a:")
//	ci := store.NewScopedStore(redisStore, "ci:")
type ScopedStore struct {
	inner  Store
	prefix string
}

// NewScopedStore wraps inner with prefix. A nil inner selects [NullStore].
func NewScopedStore(inner Store, prefix string) *ScopedStore {
	if inner == nil {
		inner = NewNullStore()
	}
	return &ScopedStore{inner: inner, prefix: prefix}
}

// Prefix returns the key prefix.
func (s *ScopedStore) Prefix() string { return s.prefix }

func (s *ScopedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Get(ctx, s.prefix+key)
}

func (s *ScopedStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.inner.Set(ctx, s.prefix+key, data, ttl)
}

func (s *ScopedStore) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.prefix+key)
}

// Close closes the inner store.
func (s *ScopedStore) Close() error { return s.inner.Close() }

var _ Store = (*ScopedStore)(nil)
