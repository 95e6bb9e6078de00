// Package respcache caches whole search responses in a key-value store.
//
// Requests that ask the index to catch up with recent writes are never
// served from or written to the cache.
package respcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fts/internal/db"
	"github.com/kailas-cloud/fts/internal/engine"
	"github.com/kailas-cloud/fts/internal/wire"
)

// store is the consumer interface for the response cache (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Config holds the cache settings.
type Config struct {
	// KeyPrefix namespaces cache keys, e.g. "fts:".
	KeyPrefix string
	TTL       time.Duration
	// MaxRows skips caching responses with more rows. Zero means no limit.
	MaxRows int
	// CacheTotal is a counter vec with label "result" ("hit"/"miss"/"bypass"). Optional.
	CacheTotal *prometheus.CounterVec
	Logger     *zap.Logger
}

// Engine decorates an engine.Engine with a response cache.
type Engine struct {
	inner      engine.Engine
	store      store
	prefix     string
	ttl        time.Duration
	maxRows    int
	cacheTotal *prometheus.CounterVec
	logger     *zap.Logger
}

// New creates a caching decorator.
func New(inner engine.Engine, s store, cfg Config) *Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		inner:      inner,
		store:      s,
		prefix:     cfg.KeyPrefix + "resp:",
		ttl:        cfg.TTL,
		maxRows:    cfg.MaxRows,
		cacheTotal: cfg.CacheTotal,
		logger:     logger,
	}
}

type entry struct {
	Rows     []json.RawMessage `json:"rows"`
	Metadata json.RawMessage   `json:"metadata"`
}

// ExecuteSearch implements engine.Engine.
func (e *Engine) ExecuteSearch(ctx context.Context, body wire.Body, opts engine.ExecOptions) (engine.RowStream, error) {
	if body.Bounded() {
		e.incCache("bypass")
		return e.inner.ExecuteSearch(ctx, body, opts) //nolint:wrapcheck // transparent decorator
	}

	key, err := e.cacheKey(body)
	if err != nil {
		return nil, err
	}
	if s, ok := e.getFromCache(ctx, key, body.ClientContextID()); ok {
		e.incCache("hit")
		return s, nil
	}
	e.incCache("miss")

	s, err := e.inner.ExecuteSearch(ctx, body, opts)
	if err != nil {
		return nil, err //nolint:wrapcheck // transparent decorator
	}
	return &recordingStream{RowStream: s, cache: e, key: key, ctx: context.WithoutCancel(ctx)}, nil
}

// cacheKey hashes the body without its client context id, which differs
// per request.
func (e *Engine) cacheKey(body wire.Body) (string, error) {
	keyed := body.Clone()
	delete(keyed, wire.KeyClientContextID)
	data, err := keyed.Marshal()
	if err != nil {
		return "", fmt.Errorf("cache key: %w", err)
	}
	h := sha256.Sum256(data)
	return e.prefix + hex.EncodeToString(h[:]), nil
}

func (e *Engine) getFromCache(ctx context.Context, key, clientContextID string) (engine.RowStream, bool) {
	data, err := e.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			e.logger.Warn("Failed to get cached response", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}

	var ent entry
	if err := json.Unmarshal(data, &ent); err != nil {
		e.logger.Warn("Failed to parse cached response", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	md, err := withClientContextID(ent.Metadata, clientContextID)
	if err != nil {
		e.logger.Warn("Failed to parse cached metadata", zap.String("key", key), zap.Error(err))
		return nil, false
	}

	rows := make([][]byte, len(ent.Rows))
	for i, r := range ent.Rows {
		rows[i] = r
	}
	return engine.NewSliceStream(rows, md), true
}

// withClientContextID rewrites the echoed client context id of a replayed response.
func withClientContextID(metadata []byte, id string) ([]byte, error) {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(metadata, &m); err != nil {
		return nil, err
	}
	if id == "" {
		delete(m, wire.KeyClientContextID)
	} else {
		quoted, _ := json.Marshal(id)
		m[wire.KeyClientContextID] = quoted
	}
	return json.Marshal(m)
}

func (e *Engine) putToCache(ctx context.Context, key string, rows [][]byte, metadata []byte) {
	if e.maxRows > 0 && len(rows) > e.maxRows {
		return
	}
	var status struct {
		Errors map[string]string `json:"errors"`
	}
	if err := json.Unmarshal(metadata, &status); err != nil || len(status.Errors) > 0 {
		return
	}

	ent := entry{Rows: make([]json.RawMessage, len(rows)), Metadata: metadata}
	for i, r := range rows {
		ent.Rows[i] = r
	}
	data, err := json.Marshal(ent)
	if err != nil {
		e.logger.Warn("Failed to encode response for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := e.store.SetWithTTL(ctx, key, data, e.ttl); err != nil {
		e.logger.Warn("Failed to cache response", zap.String("key", key), zap.Error(err))
	}
}

func (e *Engine) incCache(result string) {
	if e.cacheTotal != nil {
		e.cacheTotal.WithLabelValues(result).Inc()
	}
}

// recordingStream passes rows through and stores the complete response
// once its metadata has been read.
type recordingStream struct {
	engine.RowStream
	cache  *Engine
	key    string
	ctx    context.Context //nolint:containedctx // used only for the deferred cache write
	rows   [][]byte
	failed bool
	stored bool
}

func (s *recordingStream) Next(ctx context.Context) ([]byte, error) {
	row, err := s.RowStream.Next(ctx)
	switch {
	case errors.Is(err, io.EOF):
	case err != nil:
		s.failed = true
	default:
		s.rows = append(s.rows, row)
	}
	return row, err //nolint:wrapcheck // transparent decorator
}

func (s *recordingStream) Metadata() ([]byte, error) {
	md, err := s.RowStream.Metadata()
	if err != nil {
		return nil, err //nolint:wrapcheck // transparent decorator
	}
	if !s.failed && !s.stored {
		s.stored = true
		s.cache.putToCache(s.ctx, s.key, s.rows, md)
	}
	return md, nil
}

var (
	_ engine.Engine    = (*Engine)(nil)
	_ engine.RowStream = (*recordingStream)(nil)
)
