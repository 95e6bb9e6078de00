// Package httpengine executes search requests against an engine speaking
// JSON over HTTP. The engine answers with newline-delimited JSON: one line
// per row, the last line being the response metadata.
package httpengine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/engine"
	"github.com/kailas-cloud/fts/internal/metrics"
	"github.com/kailas-cloud/fts/internal/wire"
)

// ClientContextHeader carries the client context id of a request.
const ClientContextHeader = "X-Client-Context-ID"

const maxErrorBody = 64 << 10

// Config holds the engine connection settings.
type Config struct {
	// Endpoint is the URL search requests are POSTed to.
	Endpoint string
	// PingEndpoint is fetched by Ping. Ping is a no-op when empty.
	PingEndpoint string
	// Token is sent as a bearer token when set.
	Token      string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Engine is an engine.Engine over HTTP.
type Engine struct {
	endpoint string
	ping     string
	token    string
	client   *http.Client
	logger   *zap.Logger
}

// New creates an HTTP engine.
func New(cfg *Config) *Engine {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		endpoint: cfg.Endpoint,
		ping:     cfg.PingEndpoint,
		token:    cfg.Token,
		client:   client,
		logger:   logger,
	}
}

// ExecuteSearch implements engine.Engine. The returned stream owns the
// response body until it is closed.
func (e *Engine) ExecuteSearch(ctx context.Context, body wire.Body, opts engine.ExecOptions) (engine.RowStream, error) {
	payload, err := body.Marshal()
	if err != nil {
		return nil, err //nolint:wrapcheck // already wrapped by wire
	}

	reqCtx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, e.endpoint, bytes.NewReader(payload))
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build engine request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")
	if id := body.ClientContextID(); id != "" {
		req.Header.Set(ClientContextHeader, id)
	}
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	start := time.Now()
	resp, err := e.client.Do(req)
	if err != nil {
		cancel()
		metrics.EngineRequestDuration.WithLabelValues("transport_error").Observe(time.Since(start).Seconds())
		return nil, fmt.Errorf("engine request: %v: %w", err, domain.ErrEngineUnavailable)
	}
	metrics.EngineRequestDuration.WithLabelValues(strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer func() {
			_ = resp.Body.Close()
			cancel()
		}()
		return nil, statusError(resp)
	}

	e.logger.Debug("engine stream opened",
		zap.String("index", body.Index()),
		zap.String("client_context_id", body.ClientContextID()),
		zap.Duration("ttfb", time.Since(start)),
	)
	return &stream{
		body:    resp.Body,
		reader:  bufio.NewReader(resp.Body),
		timeout: opts.StreamingTimeout,
		cancel:  cancel,
	}, nil
}

// Ping implements engine.Pinger.
func (e *Engine) Ping(ctx context.Context) error {
	if e.ping == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.ping, http.NoBody)
	if err != nil {
		return fmt.Errorf("build ping request: %w", err)
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("engine ping: %v: %w", err, domain.ErrEngineUnavailable)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("engine ping status %d: %w", resp.StatusCode, domain.ErrEngineUnavailable)
	}
	return nil
}

func statusError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var parsed struct {
		Error string `json:"error"`
	}
	msg := string(bytes.TrimSpace(data))
	if json.Unmarshal(data, &parsed) == nil && parsed.Error != "" {
		msg = parsed.Error
	}
	if resp.StatusCode >= 500 && msg == "" {
		return fmt.Errorf("engine status %d: %w", resp.StatusCode, domain.ErrEngineUnavailable)
	}
	return fmt.Errorf("engine status %d: %s: %w", resp.StatusCode, msg, domain.ErrSearchFailed)
}

// stream reads one line ahead so the last line can be told apart as the
// metadata.
type stream struct {
	mu       sync.Mutex
	body     io.ReadCloser
	reader   *bufio.Reader
	timeout  time.Duration
	cancel   func()
	pending  []byte
	started  bool
	done     bool
	closed   bool
	metadata []byte
}

func (s *stream) Next(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, engine.ErrStreamClosed
	}
	if s.done {
		return nil, io.EOF
	}
	if err := ctx.Err(); err != nil {
		return nil, err //nolint:wrapcheck // context errors pass through
	}

	if !s.started {
		s.started = true
		first, err := s.readLine(ctx)
		if errors.Is(err, io.EOF) {
			s.done = true
			return nil, fmt.Errorf("engine stream ended without metadata: %w", domain.ErrSearchFailed)
		}
		if err != nil {
			return nil, err
		}
		s.pending = first
	}

	next, err := s.readLine(ctx)
	if errors.Is(err, io.EOF) {
		s.done = true
		s.metadata = s.pending
		s.pending = nil
		return nil, io.EOF
	}
	if err != nil {
		return nil, err
	}
	row := s.pending
	s.pending = next
	return row, nil
}

// readLine returns the next non-blank line, bounded by the streaming timeout.
func (s *stream) readLine(ctx context.Context) ([]byte, error) {
	stop := context.AfterFunc(ctx, s.cancel)
	defer stop()
	var timer *time.Timer
	if s.timeout > 0 {
		timer = time.AfterFunc(s.timeout, s.cancel)
		defer timer.Stop()
	}

	for {
		line, err := s.reader.ReadBytes('\n')
		line = bytes.TrimSpace(line)
		if len(line) > 0 {
			return line, nil
		}
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		if err != nil {
			if timer != nil && !timer.Stop() {
				return nil, fmt.Errorf("engine stream idle for %s: %w", s.timeout, domain.ErrEngineUnavailable)
			}
			if ctx.Err() != nil {
				return nil, ctx.Err() //nolint:wrapcheck // context errors pass through
			}
			return nil, fmt.Errorf("read engine stream: %v: %w", err, domain.ErrEngineUnavailable)
		}
	}
}

func (s *stream) Metadata() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.done {
		return nil, engine.ErrRowsPending
	}
	if s.metadata == nil {
		return nil, fmt.Errorf("engine stream ended without metadata: %w", domain.ErrSearchFailed)
	}
	return s.metadata, nil
}

func (s *stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	err := s.body.Close()
	s.cancel()
	if err != nil {
		return fmt.Errorf("close engine stream: %w", err)
	}
	return nil
}

var (
	_ engine.Engine = (*Engine)(nil)
	_ engine.Pinger = (*Engine)(nil)
)
