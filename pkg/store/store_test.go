package store

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	apperr "github.com/matzehuels/objgraph/pkg/errors"
)

// memStore is an in-memory Store for tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore { return &memStore{data: map[string][]byte{}} }

func (m *memStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	return d, ok, nil
}

func (m *memStore) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	return nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memStore) Close() error { return nil }

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	if err := s.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	data, hit, err := s.Get(ctx, "key")
	if err != nil || hit || data != nil {
		t.Errorf("Get = %v, %v, %v; want a miss", data, hit, err)
	}
	if err := s.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := s.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("empty store Get = %v, %v", hit, err)
	}
	want := []byte{0x00, 0xFF, 0x10}
	if err := s.Set(ctx, "k", want, 0); err != nil {
		t.Fatal(err)
	}
	got, hit, err := s.Get(ctx, "k")
	if err != nil || !hit || !bytes.Equal(got, want) {
		t.Errorf("Get = % x, %v, %v", got, hit, err)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := s.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())
	if err := s.Set(ctx, "k", []byte("v"), time.Millisecond); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := s.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(s.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry not removed")
	}
}

func TestFileStoreCorruptEntry(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())
	path := s.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := s.Get(ctx, "k"); hit || err != nil {
		t.Errorf("corrupt entry Get = %v, %v; want a miss", hit, err)
	}
}

func TestScopedStore(t *testing.T) {
	ctx := context.Background()
	inner := newMemStore()
	a := NewScopedStore(inner, "a:")
	b := NewScopedStore(inner, "b:")

	_ = a.Set(ctx, "k", []byte("1"), 0)
	_ = b.Set(ctx, "k", []byte("2"), 0)

	if got, _, _ := a.Get(ctx, "k"); string(got) != "1" {
		t.Errorf("a.Get = %q", got)
	}
	if _, ok := inner.data["b:k"]; !ok {
		t.Error("prefix not applied")
	}
	_ = a.Delete(ctx, "k")
	if _, hit, _ := b.Get(ctx, "k"); !hit {
		t.Error("delete leaked across scopes")
	}
	if NewScopedStore(nil, "x").inner == nil {
		t.Error("nil inner store not replaced")
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestRetryWithBackoff(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		retryable bool
		attempts  int
		wantCalls int
		wantErr   bool
	}{
		{"succeeds first time", 0, true, 3, 1, false},
		{"recovers", 2, true, 3, 3, false},
		{"gives up", 5, true, 3, 3, true},
		{"permanent error", 5, false, 3, 1, true},
		{"zero attempts still runs once", 0, true, 0, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := RetryWithBackoff(ctx, tt.attempts, time.Microsecond, func() error {
				calls++
				if calls <= tt.failures {
					if tt.retryable {
						return Retryable(boom)
					}
					return boom
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v", err)
			}
			if err != nil && !errors.Is(err, boom) {
				t.Errorf("err = %v does not wrap the cause", err)
			}
		})
	}
}

func TestRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := RetryWithBackoff(ctx, 3, time.Hour, func() error { return Retryable(errors.New("x")) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRedisStoreUnreachable(t *testing.T) {
	s := NewRedisStore(RedisOptions{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		Attempts:    2,
		RetryDelay:  time.Millisecond,
	})
	defer s.Close()

	ctx := context.Background()
	if _, _, err := s.Get(ctx, "k"); !apperr.Is(err, apperr.ErrCodeStore) {
		t.Errorf("Get err = %v, want STORE_ERROR", err)
	}
	if err := s.Set(ctx, "k", []byte("v"), 0); !apperr.Is(err, apperr.ErrCodeStore) {
		t.Errorf("Set err = %v, want STORE_ERROR", err)
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("Ping succeeded against a closed port")
	}
	if got := s.String(); got != "redis://127.0.0.1:1/0" {
		t.Errorf("String = %q", got)
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "snapshots.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if _, hit, err := s.Get(ctx, "k"); hit || err != nil {
		t.Fatalf("empty store Get = %v, %v", hit, err)
	}
	want := []byte{0x00, 0xFF, 0x10}
	if err := s.Set(ctx, "k", want, 0); err != nil {
		t.Fatal(err)
	}
	got, hit, err := s.Get(ctx, "k")
	if err != nil || !hit || !bytes.Equal(got, want) {
		t.Errorf("Get = % x, %v, %v", got, hit, err)
	}

	if err := s.Set(ctx, "k", []byte("new"), 0); err != nil {
		t.Fatal(err)
	}
	if got, _, _ := s.Get(ctx, "k"); string(got) != "new" {
		t.Errorf("Set did not replace: %q", got)
	}

	if err := s.Set(ctx, "empty", nil, 0); err != nil {
		t.Fatal(err)
	}
	if got, hit, _ := s.Get(ctx, "empty"); !hit || len(got) != 0 {
		t.Errorf("empty value Get = %q, %v", got, hit)
	}

	if err := s.Delete(ctx, "k"); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := s.Get(ctx, "k"); hit {
		t.Error("entry survived Delete")
	}
	if err := s.Delete(ctx, "k"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
}

func TestSQLiteStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_ = s.Set(ctx, "short", []byte("v"), time.Millisecond)
	_ = s.Set(ctx, "stale", []byte("v"), time.Millisecond)
	_ = s.Set(ctx, "long", []byte("v"), time.Hour)
	time.Sleep(5 * time.Millisecond)

	if _, hit, _ := s.Get(ctx, "short"); hit {
		t.Error("expired entry returned")
	}
	n, err := s.Purge(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Purge removed %d entries, want 1", n)
	}
	if _, hit, _ := s.Get(ctx, "long"); !hit {
		t.Error("live entry lost")
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, "k", []byte("v"), 0); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = NewSQLiteStore(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if got, hit, _ := s.Get(ctx, "k"); !hit || string(got) != "v" {
		t.Errorf("after reopen Get = %q, %v", got, hit)
	}
	if s.Path() != path {
		t.Errorf("Path() = %q", s.Path())
	}
}
