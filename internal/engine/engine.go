// Package engine defines the execution engine a search request is handed to.
package engine

import (
	"context"
	"errors"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/kailas-cloud/fts/internal/wire"
)

// ExecOptions tune a single execution.
type ExecOptions struct {
	// StreamingTimeout bounds the wait for each row. Zero means no bound.
	StreamingTimeout time.Duration
}

// Engine executes encoded search requests.
type Engine interface {
	ExecuteSearch(ctx context.Context, body wire.Body, opts ExecOptions) (RowStream, error)
}

// Pinger checks engine connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RowStream yields the row payloads of one response, then its metadata.
// A stream is read once.
type RowStream interface {
	// Next returns the next row payload, or io.EOF after the last row.
	Next(ctx context.Context) ([]byte, error)
	// Metadata returns the terminal metadata payload. It is only
	// available after Next returned io.EOF.
	Metadata() ([]byte, error)
	Close() error
}

// SliceStream is a RowStream over payloads already in memory.
type SliceStream struct {
	mu       sync.Mutex
	rows     [][]byte
	metadata []byte
	pos      int
	closed   bool
}

// NewSliceStream creates a stream over rows followed by metadata.
func NewSliceStream(rows [][]byte, metadata []byte) *SliceStream {
	return &SliceStream{rows: slices.Clone(rows), metadata: metadata}
}

// Next implements RowStream.
func (s *SliceStream) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context errors pass through
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStreamClosed
	}
	if s.pos >= len(s.rows) {
		return nil, io.EOF
	}
	row := s.rows[s.pos]
	s.pos++
	return row, nil
}

// Metadata implements RowStream.
func (s *SliceStream) Metadata() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos < len(s.rows) {
		return nil, ErrRowsPending
	}
	return s.metadata, nil
}

// Close implements RowStream.
func (s *SliceStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

// Drain reads every remaining row of s and its metadata.
func Drain(ctx context.Context, s RowStream) ([][]byte, []byte, error) {
	var rows [][]byte
	for {
		row, err := s.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		rows = append(rows, row)
	}
	md, err := s.Metadata()
	if err != nil {
		return nil, nil, err
	}
	return rows, md, nil
}

var _ RowStream = (*SliceStream)(nil)
