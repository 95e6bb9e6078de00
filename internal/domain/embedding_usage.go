package domain

import (
	"context"
	"sync"
)

type embeddingUsageKey struct{}

// EmbeddingUsage counts the embedding calls and tokens spent on the
// vector-query text of one request. A nil *EmbeddingUsage discards records.
type EmbeddingUsage struct {
	mu     sync.Mutex
	calls  int
	tokens int
}

// NewContextWithUsage returns a context carrying a fresh usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *EmbeddingUsage) {
	u := &EmbeddingUsage{}
	return context.WithValue(ctx, embeddingUsageKey{}, u), u
}

// UsageFromContext returns the collector in ctx, or nil.
func UsageFromContext(ctx context.Context) *EmbeddingUsage {
	u, _ := ctx.Value(embeddingUsageKey{}).(*EmbeddingUsage)
	return u
}

// Record adds one embedding call. Cache hits count as calls with zero tokens.
func (u *EmbeddingUsage) Record(res EmbeddingResult) {
	if u == nil {
		return
	}
	u.mu.Lock()
	u.calls++
	u.tokens += res.TotalTokens
	u.mu.Unlock()
}

// Calls returns the number of embedding calls recorded.
func (u *EmbeddingUsage) Calls() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls
}

// Tokens returns the total tokens recorded.
func (u *EmbeddingUsage) Tokens() int {
	if u == nil {
		return 0
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.tokens
}
