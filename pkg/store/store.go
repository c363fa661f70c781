// Package store persists resolution results and pattern history on disk.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/bdcache"
	"github.com/codeGROOVE-dev/bdcache/persist/localfs"

	"github.com/codeGROOVE-dev/rolodex/pkg/person"
)

// DefaultTTL is the default lifetime for cached resolutions (30 days).
const DefaultTTL = 30 * 24 * time.Hour

// KV is the narrow key-value surface the store needs. The production
// implementation is bdcache; tests substitute an in-memory map.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

// bdKV adapts bdcache to the KV interface.
type bdKV struct {
	cache *bdcache.Cache[string, []byte]
}

func (b *bdKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return b.cache.Get(ctx, key)
}

func (b *bdKV) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return b.cache.Set(ctx, key, value, ttl)
}

func (b *bdKV) Close() error {
	return b.cache.Close()
}

// OpenKV opens a disk-backed KV at the given path, creating it if needed.
// Entries expire lazily: an expired entry reads as a miss.
func OpenKV(ctx context.Context, path string, ttl time.Duration) (KV, error) {
	if err := os.MkdirAll(path, 0o750); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	persist, err := localfs.New[string, []byte]("rolodex", path)
	if err != nil {
		return nil, fmt.Errorf("create persistence layer: %w", err)
	}

	cache, err := bdcache.New[string, []byte](
		ctx,
		bdcache.WithPersistence(persist),
		bdcache.WithDefaultTTL(ttl),
	)
	if err != nil {
		return nil, fmt.Errorf("create bdcache: %w", err)
	}

	return &bdKV{cache: cache}, nil
}

// DefaultPath returns the default store location under the user cache dir.
func DefaultPath() string {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	return filepath.Join(cacheDir, "rolodex")
}

// Store is a write-through cache of terminal resolution results.
type Store struct {
	kv     KV
	logger *slog.Logger
	ttl    time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets a logger for the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates a Store over the given KV.
func New(kv KV, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		logger: slog.Default(),
		ttl:    DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key derives the cache key for a query: normalized "first|last|org".
// Two queries for the same person and organization share one entry
// regardless of spacing or letter case.
func Key(q person.Query) string {
	return normalizeKeyPart(q.FirstName) + "|" +
		normalizeKeyPart(q.LastName) + "|" +
		normalizeKeyPart(q.Organization)
}

func normalizeKeyPart(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// Get returns the cached result for a query, if one exists and has not
// expired.
func (s *Store) Get(ctx context.Context, q person.Query) (person.Result, bool, error) {
	data, found, err := s.kv.Get(ctx, Key(q))
	if err != nil {
		return person.Result{}, false, fmt.Errorf("store get: %w", err)
	}
	if !found {
		return person.Result{}, false, nil
	}

	var res person.Result
	if err := json.Unmarshal(data, &res); err != nil {
		// A corrupt entry reads as a miss so the query re-resolves.
		s.logger.WarnContext(ctx, "discarding corrupt store entry", "key", Key(q), "error", err)
		return person.Result{}, false, nil
	}

	s.logger.DebugContext(ctx, "store hit", "key", Key(q), "status", res.Status)
	return res, true, nil
}

// Put writes a terminal result through to the store. NotFound and Error
// outcomes are not cached: a later run should retry them.
func (s *Store) Put(ctx context.Context, q person.Query, res person.Result) error {
	switch res.Status {
	case person.StatusNotFound, person.StatusError:
		s.logger.DebugContext(ctx, "not caching outcome", "key", Key(q), "status", res.Status)
		return nil
	case person.StatusFound, person.StatusVerified, person.StatusNeedsReview, person.StatusRejected:
	default:
		return fmt.Errorf("unknown result status %q", res.Status)
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}

	if err := s.kv.Set(ctx, Key(q), data, s.ttl); err != nil {
		return fmt.Errorf("store put: %w", err)
	}

	s.logger.DebugContext(ctx, "store write", "key", Key(q), "status", res.Status)
	return nil
}

// Close flushes and closes the underlying KV.
func (s *Store) Close() error {
	return s.kv.Close()
}
