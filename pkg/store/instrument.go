package store

import (
	"context"
	"time"

	"github.com/matzehuels/objgraph/pkg/observability"
)

// InstrumentedStore reports every operation of an inner store to hooks.
type InstrumentedStore struct {
	inner Store
	hooks observability.StoreHooks
}

// Instrument wraps s so that hooks observe its traffic. Nil hooks return s
// unchanged.
func Instrument(s Store, hooks observability.StoreHooks) Store {
	if hooks == nil {
		return s
	}
	return &InstrumentedStore{inner: s, hooks: hooks}
}

func (s *InstrumentedStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, hit, err := s.inner.Get(ctx, key)
	switch {
	case err != nil:
		s.hooks.OnStoreError(ctx, "get", key, err)
	case hit:
		s.hooks.OnStoreHit(ctx, key)
	default:
		s.hooks.OnStoreMiss(ctx, key)
	}
	return data, hit, err
}

func (s *InstrumentedStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.inner.Set(ctx, key, data, ttl); err != nil {
		s.hooks.OnStoreError(ctx, "set", key, err)
		return err
	}
	s.hooks.OnStoreSet(ctx, key, len(data))
	return nil
}

func (s *InstrumentedStore) Delete(ctx context.Context, key string) error {
	err := s.inner.Delete(ctx, key)
	if err != nil {
		s.hooks.OnStoreError(ctx, "delete", key, err)
	}
	return err
}

func (s *InstrumentedStore) Close() error { return s.inner.Close() }

var _ Store = (*InstrumentedStore)(nil)
