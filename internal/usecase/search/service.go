// Package search runs search requests: it builds and encodes the request,
// hands the body to the execution engine and maps the streamed response.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fts/internal/domain/search/options"
	"github.com/kailas-cloud/fts/internal/domain/search/request"
	"github.com/kailas-cloud/fts/internal/domain/search/result"
	"github.com/kailas-cloud/fts/internal/engine"
	logpkg "github.com/kailas-cloud/fts/internal/logger"
	"github.com/kailas-cloud/fts/internal/metrics"
	"github.com/kailas-cloud/fts/internal/wire"
)

// Config tunes the service.
type Config struct {
	StreamingTimeout time.Duration
	Logger           *zap.Logger
}

// Service executes search requests against an engine.
type Service struct {
	engine           Engine
	streamingTimeout time.Duration
	logger           *zap.Logger
}

// New creates a search service.
func New(eng Engine, cfg Config) *Service {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{engine: eng, streamingTimeout: cfg.StreamingTimeout, logger: logger}
}

// Encode builds the request and returns its wire body without executing it.
// A client_context_id is generated when neither base nor overrides set one.
func (s *Service) Encode(
	index string, req *request.Request, base *options.Options, overrides ...options.Option,
) (*request.Descriptor, wire.Body, error) {
	d, err := request.Build(index, req, withContextID(base), overrides...)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	for _, w := range d.Warnings() {
		s.logger.Warn("Deprecated search option",
			zap.String("index", index),
			zap.String("warning", w),
		)
	}
	body, err := wire.Encode(d)
	if err != nil {
		return nil, nil, fmt.Errorf("encode request: %w", err)
	}
	return d, body, nil
}

// Search builds, encodes and executes one request. The returned Result must
// be consumed once and closed.
func (s *Service) Search(
	ctx context.Context, index string, req *request.Request, base *options.Options, overrides ...options.Option,
) (*Result, error) {
	start := time.Now()

	d, body, err := s.Encode(index, req, base, overrides...)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(index, "invalid").Inc()
		return nil, err
	}

	logger := logpkg.FromContextOr(ctx, s.logger)
	stream, err := s.engine.ExecuteSearch(ctx, body, engine.ExecOptions{StreamingTimeout: s.streamingTimeout})
	duration := time.Since(start)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(index, "engine_error").Inc()
		logger.Warn("Search execution failed",
			zap.String("index", index),
			zap.String("client_context_id", d.ClientContextID()),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("execute search: %w", err)
	}

	metrics.SearchRequestsTotal.WithLabelValues(index, "ok").Inc()
	metrics.SearchDuration.WithLabelValues(index).Observe(duration.Seconds())
	logger.Debug("Search executed",
		zap.String("index", index),
		zap.String("client_context_id", d.ClientContextID()),
		zap.Duration("duration", duration),
	)

	return newResult(d, stream, logger), nil
}

// Collect runs Search and reads the whole response.
func (s *Service) Collect(
	ctx context.Context, index string, req *request.Request, base *options.Options, overrides ...options.Option,
) (resp *result.Response, err error) {
	res, err := s.Search(ctx, index, req, base, overrides...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := res.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close result: %w", cerr)
		}
	}()
	return res.Collect(ctx)
}

func withContextID(base *options.Options) *options.Options {
	if base != nil && base.ClientContextID() != "" {
		return base
	}
	var out *options.Options
	if base == nil {
		out = &options.Options{}
	} else {
		out = base.Clone()
	}
	out.SetClientContextID(uuid.NewString())
	return out
}
