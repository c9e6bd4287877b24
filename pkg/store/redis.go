package store

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
)

// RedisOptions configures [NewRedisStore].
type RedisOptions struct {
	Addr     string // host:port, default localhost:6379
	Password string
	DB       int

	// DialTimeout bounds connection setup. Zero means 5 seconds.
	DialTimeout time.Duration

	// Attempts is how many times a command is tried when the server is
	// unreachable. Zero means 3.
	Attempts int

	// RetryDelay is the first backoff delay, doubled per retry.
	// Zero means 200ms.
	RetryDelay time.Duration
}

// RedisStore keeps snapshots in Redis using plain GET/SET/DEL with native
// expiry.
type RedisStore struct {
	client   redis.UniversalClient
	attempts int
	delay    time.Duration
}

// NewRedisStore connects to the server described by opts. It does not
// contact the server; use [RedisStore.Ping] to check connectivity.
func NewRedisStore(opts RedisOptions) *RedisStore {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 5 * time.Second
	}
	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
		MaxRetries:  -1, // retries are handled by RetryWithBackoff
	})
	return NewRedisStoreFromClient(client, opts)
}

// NewRedisStoreFromClient wraps an existing client, such as a cluster or
// sentinel client. Only the retry fields of opts are used.
func NewRedisStoreFromClient(client redis.UniversalClient, opts RedisOptions) *RedisStore {
	if opts.Attempts == 0 {
		opts.Attempts = 3
	}
	if opts.RetryDelay == 0 {
		opts.RetryDelay = 200 * time.Millisecond
	}
	return &RedisStore{client: client, attempts: opts.Attempts, delay: opts.RetryDelay}
}

// Ping checks that the server answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.do(ctx, "ping", "", func() error { return s.client.Ping(ctx).Err() })
}

// Get retrieves a value. A missing key is a miss, not an error.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	hit := false
	err := s.do(ctx, "get", key, func() error {
		b, err := s.client.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		data, hit = b, true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return data, hit, nil
}

// Set stores a value with Redis-side expiry.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return s.do(ctx, "set", key, func() error { return s.client.Set(ctx, key, data, ttl).Err() })
}

// Delete removes a value.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.do(ctx, "delete", key, func() error { return s.client.Del(ctx, key).Err() })
}

// Close closes the client connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

// do runs fn with retries on network failures and codes the final error.
func (s *RedisStore) do(ctx context.Context, op, key string, fn func() error) error {
	err := RetryWithBackoff(ctx, s.attempts, s.delay, func() error {
		err := fn()
		if isTransient(err) {
			return Retryable(err)
		}
		return err
	})
	if err == nil {
		return nil
	}
	if key == "" {
		return apperr.Wrap(apperr.ErrCodeStore, err, "redis %s", op)
	}
	return apperr.Wrap(apperr.ErrCodeStore, err, "redis %s %s", op, key)
}

func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

var _ Store = (*RedisStore)(nil)

// String describes the store for logs.
func (s *RedisStore) String() string {
	if c, ok := s.client.(*redis.Client); ok {
		return fmt.Sprintf("redis://%s/%d", c.Options().Addr, c.Options().DB)
	}
	return "redis"
}
