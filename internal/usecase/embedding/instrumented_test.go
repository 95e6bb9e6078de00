package embedding

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/kailas-cloud/fts/internal/domain"
	logpkg "github.com/kailas-cloud/fts/internal/logger"
)

type mockEmbedder struct {
	result    domain.EmbeddingResult
	err       error
	calls     int
	healthErr error
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	return m.result, m.err
}

func (m *mockEmbedder) HealthCheck(_ context.Context) error { return m.healthErr }

type plainEmbedder struct{}

func (plainEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, nil
}

func TestInstrumentedEmbedder_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:    []float32{0.1, 0.2, 0.3},
		PromptTokens: 7,
		TotalTokens:  7,
	}}
	p := NewInstrumentedEmbedder(inner, Config{Provider: "test", Model: "test-model"})

	result, err := p.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Embedding) != 3 {
		t.Fatalf("expected 3 dimensions, got %d", len(result.Embedding))
	}
	if result.TotalTokens != 7 {
		t.Errorf("TotalTokens = %d, expected 7", result.TotalTokens)
	}
}

func TestInstrumentedEmbedder_Limits(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"too long", strings.Repeat("ж", 11)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inner := &mockEmbedder{}
			p := NewInstrumentedEmbedder(inner, Config{MaxTextLength: 10})

			_, err := p.Embed(context.Background(), tt.text)
			if !errors.Is(err, domain.ErrInvalidArgument) {
				t.Fatalf("expected ErrInvalidArgument, got %v", err)
			}
			if inner.calls != 0 {
				t.Errorf("inner called %d times", inner.calls)
			}
		})
	}
}

func TestInstrumentedEmbedder_LimitCountsRunes(t *testing.T) {
	inner := &mockEmbedder{}
	p := NewInstrumentedEmbedder(inner, Config{MaxTextLength: 10})

	if _, err := p.Embed(context.Background(), strings.Repeat("ж", 10)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestInstrumentedEmbedder_Error(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	p := NewInstrumentedEmbedder(inner, Config{Provider: "test", Model: "m", Logger: zap.NewNop()})

	ctx := logpkg.ContextWithLogger(context.Background(), zap.New(core))
	_, err := p.Embed(ctx, "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Fatalf("expected ErrEmbeddingProviderError, got %v", err)
	}
	if logs.FilterMessage("Embedding request failed").Len() != 1 {
		t.Errorf("expected failure logged on the request logger, got %d entries", logs.Len())
	}
}

func TestInstrumentedEmbedder_HealthCheck(t *testing.T) {
	down := errors.New("down")
	p := NewInstrumentedEmbedder(&mockEmbedder{healthErr: down}, Config{})
	if err := p.HealthCheck(context.Background()); !errors.Is(err, down) {
		t.Fatalf("expected inner health error, got %v", err)
	}

	p = NewInstrumentedEmbedder(plainEmbedder{}, Config{})
	if err := p.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected nil for embedder without health check, got %v", err)
	}
}
