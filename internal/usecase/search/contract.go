package search

import (
	"context"

	"github.com/kailas-cloud/fts/internal/engine"
	"github.com/kailas-cloud/fts/internal/wire"
)

// Engine is the local interface for search execution.
type Engine interface {
	ExecuteSearch(ctx context.Context, body wire.Body, opts engine.ExecOptions) (engine.RowStream, error)
}
