package search

import (
	"context"

	"github.com/kailas-cloud/fts/internal/engine"
	"github.com/kailas-cloud/fts/internal/wire"
)

// fakeEngine records the last body and serves a canned response.
type fakeEngine struct {
	rows     [][]byte
	metadata []byte
	err      error

	lastBody wire.Body
	lastOpts engine.ExecOptions
	stream   *engine.SliceStream
}

func (f *fakeEngine) ExecuteSearch(_ context.Context, body wire.Body, opts engine.ExecOptions) (engine.RowStream, error) {
	f.lastBody = body
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	f.stream = engine.NewSliceStream(f.rows, f.metadata)
	return f.stream, nil
}

func cannedEngine() *fakeEngine {
	return &fakeEngine{
		rows: [][]byte{
			[]byte(`{"index":"hotels_1","id":"h1","score":2.5,"fields":{"name":"Sea View"}}`),
			[]byte(`{"index":"hotels_1","id":"h2","score":1.5}`),
			[]byte(`{"index":"hotels_2","id":"h3","score":0.5}`),
		},
		metadata: []byte(`{
			"client_context_id": "ctx-1",
			"metrics": {"took": 1500, "total_rows": 3, "max_score": 2.5, "success_partition_count": 2},
			"facets": {"types": {"field": "type", "total": 3, "terms": [{"term": "hotel", "count": 3}]}}
		}`),
	}
}
