package store

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/objgraph/pkg/digest"
	apperr "github.com/matzehuels/objgraph/pkg/errors"
	"github.com/matzehuels/objgraph/pkg/graph"
	objio "github.com/matzehuels/objgraph/pkg/io"
)

// ContentPrefix starts every key produced by [SaveContent].
const ContentPrefix = "graph:"

// SaveGraph stores g under key as a zstd-compressed binary document.
func SaveGraph(ctx context.Context, s Store, key string, g *graph.Graph, ttl time.Duration) error {
	if err := apperr.ValidateKey(key); err != nil {
		return err
	}
	data, err := objio.MarshalCompressed(g)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := s.Set(ctx, key, data, ttl); err != nil {
		return fmt.Errorf("save snapshot %s: %w", key, err)
	}
	return nil
}

// LoadGraph loads the snapshot stored under key into a new graph built
// with opts. Returns [ErrNotFound] if there is none.
func LoadGraph(ctx context.Context, s Store, key string, opts ...graph.Option) (*graph.Graph, error) {
	if err := apperr.ValidateKey(key); err != nil {
		return nil, err
	}
	data, ok, err := s.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", key, err)
	}
	if !ok {
		return nil, apperr.Wrap(apperr.ErrCodeNotFound, ErrNotFound, "%s", key)
	}
	g, err := objio.UnmarshalCompressed(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", key, err)
	}
	return g, nil
}

// SaveContent stores g under a key derived from [digest.Graph] and returns
// the key. Equal graphs always map to the same key.
func SaveContent(ctx context.Context, s Store, g *graph.Graph, ttl time.Duration) (string, error) {
	sum, err := digest.Graph(g)
	if err != nil {
		return "", fmt.Errorf("digest snapshot: %w", err)
	}
	key := ContentPrefix + sum.String()
	if err := SaveGraph(ctx, s, key, g, ttl); err != nil {
		return "", err
	}
	return key, nil
}
