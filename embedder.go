package fts

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/fts/internal/domain"
)

// Embedder turns the text of a vector query into a vector. Plug one in with
// WithEmbedder to let search documents carry "text" instead of "vector".
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbedderFunc adapts a plain function that returns only the vector.
type EmbedderFunc func(ctx context.Context, text string) ([]float32, error)

// Embed calls f and reports no token usage.
func (f EmbedderFunc) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	vec, err := f(ctx, text)
	if err != nil {
		return EmbeddingResult{}, err
	}
	return EmbeddingResult{Embedding: vec}, nil
}

// EmbeddingResult is an embedding vector and the tokens spent producing it.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed %q: %w", text, err)
	}
	if len(r.Embedding) == 0 {
		return domain.EmbeddingResult{}, fmt.Errorf("embed %q: %w: empty vector", text, domain.ErrEmbeddingProviderError)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}
