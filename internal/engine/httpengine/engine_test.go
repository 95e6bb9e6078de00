package httpengine

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/engine"
	"github.com/kailas-cloud/fts/internal/wire"
)

const ndjson = `{"id":"a","score":2}
{"id":"b","score":1}
{"metrics":{"success_partition_count":1}}
`

func testBody() wire.Body {
	return wire.Body{
		wire.KeyIndexName:       "hotels",
		wire.KeyQuery:           `{"match_all":null}`,
		wire.KeyClientContextID: "ctx-42",
	}
}

func TestExecuteSearch_StreamsRowsThenMetadata(t *testing.T) {
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get(ClientContextHeader) != "ctx-42" {
			t.Errorf("client context header = %q", r.Header.Get(ClientContextHeader))
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/x-ndjson")
		_, _ = io.WriteString(w, ndjson)
	}))
	defer srv.Close()

	e := New(&Config{Endpoint: srv.URL, Token: "secret"})
	s, err := e.ExecuteSearch(context.Background(), testBody(), engine.ExecOptions{})
	if err != nil {
		t.Fatalf("ExecuteSearch: %v", err)
	}
	defer func() { _ = s.Close() }()

	rows, md, err := engine.Drain(context.Background(), s)
	if err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(rows) != 2 || string(rows[0]) != `{"id":"a","score":2}` {
		t.Errorf("rows = %q", rows)
	}
	if !strings.Contains(string(md), "success_partition_count") {
		t.Errorf("metadata = %q", md)
	}
	if gotBody["index_name"] != "hotels" {
		t.Errorf("engine received %v", gotBody)
	}
}

func TestExecuteSearch_NoRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "\n{\"metrics\":{}}")
	}))
	defer srv.Close()

	s, err := New(&Config{Endpoint: srv.URL}).ExecuteSearch(context.Background(), testBody(), engine.ExecOptions{})
	if err != nil {
		t.Fatalf("ExecuteSearch: %v", err)
	}
	if _, err := s.Metadata(); !errors.Is(err, engine.ErrRowsPending) {
		t.Errorf("Metadata() before EOF = %v", err)
	}
	if _, err := s.Next(context.Background()); !errors.Is(err, io.EOF) {
		t.Fatalf("Next() = %v, want io.EOF", err)
	}
	md, err := s.Metadata()
	if err != nil || string(md) != `{"metrics":{}}` {
		t.Errorf("Metadata() = %q, %v", md, err)
	}
	_ = s.Close()
	if _, err := s.Next(context.Background()); !errors.Is(err, engine.ErrStreamClosed) {
		t.Errorf("Next after Close = %v", err)
	}
}

func TestExecuteSearch_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	defer srv.Close()

	s, err := New(&Config{Endpoint: srv.URL}).ExecuteSearch(context.Background(), testBody(), engine.ExecOptions{})
	if err != nil {
		t.Fatalf("ExecuteSearch: %v", err)
	}
	if _, err := s.Next(context.Background()); !errors.Is(err, domain.ErrSearchFailed) {
		t.Errorf("Next() = %v, want ErrSearchFailed", err)
	}
}

func TestExecuteSearch_StatusErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    error
		wantMsg string
	}{
		{"engine error text", http.StatusBadRequest, `{"error":"index not found: hotels"}`, domain.ErrSearchFailed, "index not found"},
		{"plain text", http.StatusInternalServerError, "boom", domain.ErrSearchFailed, "boom"},
		{"unavailable", http.StatusServiceUnavailable, "", domain.ErrEngineUnavailable, "503"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := New(&Config{Endpoint: srv.URL}).ExecuteSearch(context.Background(), testBody(), engine.ExecOptions{})
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("err = %q, want it to mention %q", err, tt.wantMsg)
			}
		})
	}
}

func TestExecuteSearch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := New(&Config{Endpoint: url}).ExecuteSearch(context.Background(), testBody(), engine.ExecOptions{})
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Errorf("err = %v, want ErrEngineUnavailable", err)
	}
}

func TestExecuteSearch_StreamingTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "{\"id\":\"a\"}\n")
		w.(http.Flusher).Flush()
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	s, err := New(&Config{Endpoint: srv.URL}).ExecuteSearch(context.Background(), testBody(),
		engine.ExecOptions{StreamingTimeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("ExecuteSearch: %v", err)
	}
	defer func() { _ = s.Close() }()

	if _, err := s.Next(context.Background()); !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Errorf("Next() = %v, want ErrEngineUnavailable", err)
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/ping" {
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	if err := New(&Config{Endpoint: srv.URL, PingEndpoint: srv.URL + "/api/ping"}).Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
	err := New(&Config{Endpoint: srv.URL, PingEndpoint: srv.URL + "/nope"}).Ping(context.Background())
	if !errors.Is(err, domain.ErrEngineUnavailable) {
		t.Errorf("Ping(404) = %v", err)
	}
	if err := New(&Config{Endpoint: srv.URL}).Ping(context.Background()); err != nil {
		t.Errorf("Ping without endpoint = %v", err)
	}
}
