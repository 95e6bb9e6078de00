package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"sync"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/request"
	"github.com/kailas-cloud/fts/internal/domain/search/result"
	"github.com/kailas-cloud/fts/internal/engine"
	"github.com/kailas-cloud/fts/internal/metrics"
	"github.com/kailas-cloud/fts/internal/wire"
)

// Item is one element of an asynchronous row stream.
type Item struct {
	Row result.Row
	Err error
}

// Result is the response of one executed search. Rows can be consumed once,
// either with Rows or with Stream. Metadata and Facets are available after
// the rows; calling them earlier discards the rows not yet read.
type Result struct {
	desc   *request.Descriptor
	stream engine.RowStream
	logger *zap.Logger

	mu       sync.Mutex
	consumed bool
	finished bool
	rows     int
	metadata result.Metadata
	facets   map[string]result.FacetResult
	err      error
}

func newResult(d *request.Descriptor, stream engine.RowStream, logger *zap.Logger) *Result {
	return &Result{desc: d, stream: stream, logger: logger}
}

// ClientContextID returns the id the request was sent with.
func (r *Result) ClientContextID() string { return r.desc.ClientContextID() }

func (r *Result) claim() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.consumed {
		return false
	}
	r.consumed = true
	return true
}

// Rows returns a single-use sequence of decoded rows. Ranging over it a
// second time yields domain.ErrAlreadyConsumed. A decode or stream error is
// yielded once and ends the sequence.
func (r *Result) Rows(ctx context.Context) iter.Seq2[result.Row, error] {
	return func(yield func(result.Row, error) bool) {
		if !r.claim() {
			yield(result.Row{}, domain.ErrAlreadyConsumed)
			return
		}
		for {
			row, err := r.next(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(result.Row{}, err)
				return
			}
			if !yield(row, nil) {
				return
			}
		}
	}
}

// Stream delivers the rows on a channel fed by a goroutine. The channel is
// closed after the last row, after an error item, or when ctx is done.
// Calling Stream after the rows were consumed yields one
// domain.ErrAlreadyConsumed item.
func (r *Result) Stream(ctx context.Context) <-chan Item {
	ch := make(chan Item)
	go func() {
		defer close(ch)
		for row, err := range r.Rows(ctx) {
			select {
			case ch <- Item{Row: row, Err: err}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// next reads and decodes one row. It returns io.EOF after the last row,
// once the metadata has been mapped.
func (r *Result) next(ctx context.Context) (result.Row, error) {
	payload, err := r.stream.Next(ctx)
	if errors.Is(err, io.EOF) {
		if err = r.finish(); err != nil {
			return result.Row{}, err
		}
		return result.Row{}, io.EOF
	}
	if err != nil {
		return result.Row{}, fmt.Errorf("read row: %w", err)
	}
	row, err := wire.DecodeRow(payload, r.desc.Options().Serializer())
	if err != nil {
		return result.Row{}, fmt.Errorf("decode row: %w", err)
	}
	r.mu.Lock()
	r.rows++
	r.mu.Unlock()
	return row, nil
}

func (r *Result) finish() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return r.err
	}
	r.finished = true

	payload, err := r.stream.Metadata()
	if err != nil {
		r.err = fmt.Errorf("read metadata: %w", err)
		return r.err
	}
	md, facets, err := wire.DecodeMetadata(payload, r.desc.Facets())
	if err != nil {
		r.err = fmt.Errorf("decode metadata: %w", err)
		return r.err
	}
	r.metadata, r.facets = md, facets
	r.recordLocked(md)
	return nil
}

func (r *Result) recordLocked(md result.Metadata) {
	index := r.desc.Index()
	metrics.SearchRowsTotal.WithLabelValues(index).Add(float64(r.rows))
	if md.Partial() {
		metrics.SearchPartialTotal.WithLabelValues(index).Inc()
		r.logger.Warn("Search returned partial results",
			zap.String("index", index),
			zap.String("client_context_id", md.ClientContextID()),
			zap.Int("failed_partitions", len(md.Errors())),
		)
	}
}

// drain reads the rows left in the stream without decoding them.
func (r *Result) drain(ctx context.Context) error {
	r.mu.Lock()
	done := r.finished
	r.consumed = true
	r.mu.Unlock()
	if done {
		return r.err
	}
	for {
		_, err := r.stream.Next(ctx)
		if errors.Is(err, io.EOF) {
			return r.finish()
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		r.mu.Lock()
		r.rows++
		r.mu.Unlock()
	}
}

// Metadata returns the response metadata, reading past any unread rows.
func (r *Result) Metadata(ctx context.Context) (result.Metadata, error) {
	if err := r.drain(ctx); err != nil {
		return result.Metadata{}, err
	}
	return r.metadata, nil
}

// Facets returns the facet results keyed by facet name.
func (r *Result) Facets(ctx context.Context) (map[string]result.FacetResult, error) {
	if err := r.drain(ctx); err != nil {
		return nil, err
	}
	return r.facets, nil
}

// Collect reads every row and the metadata into one Response. It fails
// with domain.ErrAlreadyConsumed when the rows were already read.
func (r *Result) Collect(ctx context.Context) (*result.Response, error) {
	if !r.claim() {
		return nil, domain.ErrAlreadyConsumed
	}
	rows, md, err := engine.Drain(ctx, r.stream)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	resp, err := wire.MapResponse(r.desc, rows, md)
	if err != nil {
		return nil, fmt.Errorf("map response: %w", err)
	}

	r.mu.Lock()
	r.rows = len(rows)
	r.finished = true
	r.metadata, r.facets = resp.Metadata, resp.Facets
	r.recordLocked(resp.Metadata)
	r.mu.Unlock()
	return resp, nil
}

// Close releases the underlying stream.
func (r *Result) Close() error {
	if err := r.stream.Close(); err != nil {
		return fmt.Errorf("close stream: %w", err)
	}
	return nil
}
