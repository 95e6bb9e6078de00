package embcache

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/fts/internal/db"
	"github.com/kailas-cloud/fts/internal/domain"
)

type fakeEmbedder struct {
	result domain.EmbeddingResult
	err    error
	calls  int
}

func (m *fakeEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

// fakeKVStore implements the consumer interface for tests.
type fakeKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *fakeKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *fakeKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

func newTestCachedEmbedder(t *testing.T, inner *fakeEmbedder) (*CachedEmbedder, *fakeKVStore) {
	t.Helper()
	ms := &fakeKVStore{}
	ce := New(inner, ms, Config{KeyPrefix: "fts:", TTL: time.Hour})
	return ce, ms
}
