package embcache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/fts/internal/db"
	"github.com/kailas-cloud/fts/internal/domain"
)

func TestEmbed_CacheMiss(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 10,
		TotalTokens:  10,
	}}
	ce, ms := newTestCachedEmbedder(t, inner)

	var gotKey string
	var gotTTL time.Duration
	ms.setFn = func(_ context.Context, key string, _ []byte, ttl time.Duration) error {
		gotKey, gotTTL = key, ttl
		return nil
	}

	result, err := ce.Embed(context.Background(), "sea view hotel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.1 {
		t.Fatalf("unexpected vector: %v", result.Embedding)
	}
	if result.TotalTokens != 10 {
		t.Errorf("TotalTokens = %d, want 10", result.TotalTokens)
	}
	if !strings.HasPrefix(gotKey, "fts:emb:") || gotTTL != time.Hour {
		t.Errorf("cache put key=%q ttl=%s", gotKey, gotTTL)
	}
}

func TestEmbed_CacheHit(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1}}}
	ce, ms := newTestCachedEmbedder(t, inner)

	cached := encodeVector([]float32{0.4, 0.5, 0.6})
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return cached, nil
	}

	result, err := ce.Embed(context.Background(), "sea view hotel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 || result.Embedding[0] != 0.4 {
		t.Fatalf("expected cached vector, got: %v", result.Embedding)
	}
	if result.TotalTokens != 0 || inner.calls != 0 {
		t.Errorf("TotalTokens = %d, inner calls = %d, want 0 and 0", result.TotalTokens, inner.calls)
	}
}

func TestEmbed_CorruptCacheFallsThrough(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return []byte{1, 2, 3}, nil
	}

	result, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || result.Embedding[0] != 1 {
		t.Errorf("inner calls = %d, vector %v", inner.calls, result.Embedding)
	}
}

func TestEmbed_StoreErrorsAreNotFatal(t *testing.T) {
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}
	ce, ms := newTestCachedEmbedder(t, inner)
	ms.getFn = func(_ context.Context, _ string) ([]byte, error) {
		return nil, errors.New("connection reset")
	}
	ms.setFn = func(_ context.Context, _ string, _ []byte, _ time.Duration) error {
		return errors.New("connection reset")
	}

	if _, err := ce.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("store failure surfaced: %v", err)
	}
}

func TestEmbed_InnerError(t *testing.T) {
	inner := &fakeEmbedder{err: domain.ErrEmbeddingProviderError}
	ce, _ := newTestCachedEmbedder(t, inner)

	_, err := ce.Embed(context.Background(), "x")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("err = %v, want ErrEmbeddingProviderError", err)
	}
}

func TestEmbed_DimensionMismatchIsInvalid(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_emb_cache_dims_total"}, []string{"result"})
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1, 2}}}
	ms := &fakeKVStore{getFn: func(_ context.Context, _ string) ([]byte, error) {
		return encodeVector([]float32{1, 2, 3}), nil
	}}
	ce := New(inner, ms, Config{Dimensions: 2, CacheTotal: counter})

	result, err := ce.Embed(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.calls != 1 || len(result.Embedding) != 2 {
		t.Errorf("inner calls = %d, vector %v", inner.calls, result.Embedding)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("invalid")); v != 1 {
		t.Errorf("invalid = %f, want 1", v)
	}
}

func TestEmbed_CountsHitsAndMisses(t *testing.T) {
	counter := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "test_emb_cache_total"}, []string{"result"})
	inner := &fakeEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}

	var stored []byte
	ms := &fakeKVStore{
		getFn: func(_ context.Context, _ string) ([]byte, error) {
			if stored == nil {
				return nil, db.ErrKeyNotFound
			}
			return stored, nil
		},
		setFn: func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			stored = value
			return nil
		},
	}
	ce := New(inner, ms, Config{CacheTotal: counter})

	_, _ = ce.Embed(context.Background(), "x")
	_, _ = ce.Embed(context.Background(), "x")
	if v := testutil.ToFloat64(counter.WithLabelValues("miss")); v != 1 {
		t.Errorf("miss = %f, want 1", v)
	}
	if v := testutil.ToFloat64(counter.WithLabelValues("hit")); v != 1 {
		t.Errorf("hit = %f, want 1", v)
	}
	if inner.calls != 1 {
		t.Errorf("inner calls = %d, want 1", inner.calls)
	}
}

func TestCacheKey_ScopedByModel(t *testing.T) {
	a := New(nil, nil, Config{KeyPrefix: "fts:", Provider: "openai", Model: "small"})
	b := New(nil, nil, Config{KeyPrefix: "fts:", Provider: "openai", Model: "large"})
	c := New(nil, nil, Config{KeyPrefix: "fts:", Provider: "openai", Model: "small", Dimensions: 256})

	keys := map[string]bool{a.cacheKey("x"): true, b.cacheKey("x"): true, c.cacheKey("x"): true}
	if len(keys) != 3 {
		t.Errorf("cache keys collide across models: %v", keys)
	}
	if a.cacheKey("x") != a.cacheKey("x") {
		t.Error("cache key is not stable")
	}
	if a.cacheKey("x") == a.cacheKey("y") {
		t.Error("different texts share a key")
	}
}

func TestVectorBytesRoundTrip(t *testing.T) {
	in := []float32{0.25, -1, 3.5}
	out, err := decodeVector(encodeVector(in))
	if err != nil {
		t.Fatalf("decodeVector: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("round trip = %v, want %v", out, in)
		}
	}
}
