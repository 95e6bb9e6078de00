// Package embedding guards and observes the embedding of vector-query text.
package embedding

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fts/internal/domain"
	logpkg "github.com/kailas-cloud/fts/internal/logger"
)

// DefaultMaxTextLength caps vector-query text, in runes.
const DefaultMaxTextLength = 2048

// InstrumentedEmbedder wraps an Embedder with input limits and logging.
// Transport metrics (requests, duration, tokens) are recorded in transport/openai.
type InstrumentedEmbedder struct {
	inner     domain.Embedder
	provider  string
	model     string
	maxLength int
	logger    *zap.Logger
}

// Config holds InstrumentedEmbedder settings.
type Config struct {
	Provider string
	Model    string
	// MaxTextLength rejects longer texts with ErrInvalidArgument. 0 = DefaultMaxTextLength.
	MaxTextLength int
	Logger        *zap.Logger
}

// NewInstrumentedEmbedder wraps an embedder with limits and observability.
func NewInstrumentedEmbedder(inner domain.Embedder, cfg Config) *InstrumentedEmbedder {
	maxLength := cfg.MaxTextLength
	if maxLength <= 0 {
		maxLength = DefaultMaxTextLength
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedEmbedder{
		inner:     inner,
		provider:  cfg.Provider,
		model:     cfg.Model,
		maxLength: maxLength,
		logger:    logger,
	}
}

// Embed validates text, delegates to the inner embedder and logs the outcome.
func (p *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	if text == "" {
		return domain.EmbeddingResult{}, domain.InvalidArgument("vector query text is empty")
	}
	if n := utf8.RuneCountInString(text); n > p.maxLength {
		return domain.EmbeddingResult{}, domain.InvalidArgument(
			"vector query text has %d characters, limit is %d", n, p.maxLength)
	}

	logger := logpkg.FromContextOr(ctx, p.logger)
	start := time.Now()

	result, err := p.inner.Embed(ctx, text)

	duration := time.Since(start)

	if err != nil {
		logger.Error("Embedding request failed",
			zap.String("provider", p.provider),
			zap.String("model", p.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	logger.Debug("Embedding request completed",
		zap.String("provider", p.provider),
		zap.String("model", p.model),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("prompt_tokens", result.PromptTokens),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result, nil
}

// HealthCheck delegates to the inner embedder when it supports health checks.
func (p *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	if hc, ok := p.inner.(domain.HealthChecker); ok {
		return hc.HealthCheck(ctx) //nolint:wrapcheck // transparent decorator
	}
	return nil
}
