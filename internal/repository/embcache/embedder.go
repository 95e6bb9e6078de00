// Package embcache caches the embeddings of vector query text.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fts/internal/db"
	"github.com/kailas-cloud/fts/internal/domain"
)

// Cache lookup outcomes, used as the "result" label of Config.CacheTotal.
const (
	resultHit     = "hit"
	resultMiss    = "miss"
	resultInvalid = "invalid"
)

// store is the consumer interface for the embedding cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config holds the cache settings.
type Config struct {
	// KeyPrefix namespaces cache keys, e.g. "fts:".
	KeyPrefix string
	TTL       time.Duration

	// Provider, Model and Dimensions scope the cache so that switching the
	// embedding model never serves vectors of the old one.
	Provider   string
	Model      string
	Dimensions int

	// CacheTotal is a counter vec with label "result" ("hit"/"miss"/"invalid"). Optional.
	CacheTotal *prometheus.CounterVec
	Logger     *zap.Logger
}

// CachedEmbedder caches embeddings in a key-value store.
// Vectors are stored as little-endian float32 arrays.
type CachedEmbedder struct {
	inner      domain.Embedder
	store      store
	prefix     string
	scope      string
	dims       int
	ttl        time.Duration
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
func New(inner domain.Embedder, s store, cfg Config) *CachedEmbedder {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		inner:      inner,
		store:      s,
		prefix:     cfg.KeyPrefix + "emb:",
		scope:      cfg.Provider + "\x00" + cfg.Model + "\x00" + strconv.Itoa(cfg.Dimensions) + "\x00",
		dims:       cfg.Dimensions,
		ttl:        cfg.TTL,
		cacheTotal: cfg.CacheTotal,
		logger:     logger,
	}
}

// Embed returns a cached embedding or calls the inner embedder.
// A hit reports zero tokens. Store failures degrade to a miss.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := c.cacheKey(text)

	vec, outcome := c.lookup(ctx, key)
	c.count(outcome)
	if outcome == resultHit {
		return domain.EmbeddingResult{Embedding: vec}, nil
	}

	result, err := c.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	if err := c.store.SetWithTTL(ctx, key, encodeVector(result.Embedding), c.ttl); err != nil {
		c.logger.Warn("Failed to cache embedding", zap.String("key", key), zap.Error(err))
	}
	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (c *CachedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := c.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}

func (c *CachedEmbedder) cacheKey(text string) string {
	h := sha256.Sum256([]byte(c.scope + text))
	return c.prefix + hex.EncodeToString(h[:])
}

func (c *CachedEmbedder) lookup(ctx context.Context, key string) ([]float32, string) {
	data, err := c.store.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, resultMiss
	case err != nil:
		c.logger.Warn("Failed to get cached embedding", zap.String("key", key), zap.Error(err))
		return nil, resultMiss
	case len(data) == 0:
		return nil, resultMiss
	}

	vec, err := decodeVector(data)
	if err == nil && c.dims > 0 && len(vec) != c.dims {
		err = fmt.Errorf("cached vector has %d dimensions, want %d", len(vec), c.dims)
	}
	if err != nil {
		c.logger.Warn("Discarding cached embedding", zap.String("key", key), zap.Error(err))
		return nil, resultInvalid
	}
	return vec, resultHit
}

func (c *CachedEmbedder) count(outcome string) {
	if c.cacheTotal != nil {
		c.cacheTotal.WithLabelValues(outcome).Inc()
	}
}

func encodeVector(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func decodeVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding cache data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}

var (
	_ domain.Embedder      = (*CachedEmbedder)(nil)
	_ domain.HealthChecker = (*CachedEmbedder)(nil)
)
