package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/kailas-cloud/fts/internal/engine/httpengine"
	"github.com/kailas-cloud/fts/internal/querydoc"
	chiTransport "github.com/kailas-cloud/fts/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/fts/internal/transport/openai"
	searchuc "github.com/kailas-cloud/fts/internal/usecase/search"
)

// embeddingKeyEnv holds the API key for text vector queries.
const embeddingKeyEnv = "FTS_EMBEDDING_API_KEY"

// line is one JSON line of query output. Exactly one field is set.
type line struct {
	Row      *chiTransport.RowResponse             `json:"row,omitempty"`
	Facets   map[string]chiTransport.FacetResponse `json:"facets,omitempty"`
	Metadata *chiTransport.MetadataResponse        `json:"metadata,omitempty"`
}

func readInput(path string) ([]byte, error) {
	if path == "-" || path == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func runEncode(ctx context.Context, w io.Writer, data []byte, index string, logger *zap.Logger) error {
	doc, err := querydoc.Decode(data)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}
	req, err := doc.Request(ctx, nil)
	if err != nil {
		return fmt.Errorf("document request: %w", err)
	}

	svc := searchuc.New(nil, searchuc.Config{Logger: logger})
	_, body, err := svc.Encode(pickIndex(index, doc), req, nil, doc.Options...)
	if err != nil {
		return err //nolint:wrapcheck // service errors carry their op
	}

	payload, err := body.Marshal()
	if err != nil {
		return fmt.Errorf("marshal body: %w", err)
	}
	var out bytes.Buffer
	if err := json.Indent(&out, payload, "", "  "); err != nil {
		return fmt.Errorf("indent body: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(w)
	return err //nolint:wrapcheck // writer error
}

func runQuery(ctx context.Context, w io.Writer, data []byte, index string, q *queryFlags, logger *zap.Logger) error {
	if q.endpoint == "" {
		return errors.New("--endpoint (or FTS_ENGINE_ENDPOINT) is required")
	}

	doc, err := querydoc.Decode(data)
	if err != nil {
		return fmt.Errorf("decode document: %w", err)
	}

	var emb querydoc.Embedder
	if q.embeddingModel != "" {
		emb = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     os.Getenv(embeddingKeyEnv),
			BaseURL:    q.embeddingURL,
			Model:      q.embeddingModel,
			Dimensions: q.embeddingDims,
			Logger:     logger,
		})
	}
	req, err := doc.Request(ctx, emb)
	if err != nil {
		return fmt.Errorf("document request: %w", err)
	}

	eng := httpengine.New(&httpengine.Config{
		Endpoint:   q.endpoint,
		Token:      q.token,
		HTTPClient: &http.Client{Timeout: q.requestTimeout},
		Logger:     logger,
	})
	svc := searchuc.New(eng, searchuc.Config{StreamingTimeout: q.streamingTimeout, Logger: logger})

	res, err := svc.Search(ctx, pickIndex(index, doc), req, nil, doc.Options...)
	if err != nil {
		return err //nolint:wrapcheck // service errors carry their op
	}
	defer func() { _ = res.Close() }()

	enc := json.NewEncoder(w)
	for row, rowErr := range res.Rows(ctx) {
		if rowErr != nil {
			return fmt.Errorf("read rows: %w", rowErr)
		}
		out := chiTransport.NewRowResponse(&row)
		if err := enc.Encode(line{Row: &out}); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}

	facets, err := res.Facets(ctx)
	if err != nil {
		return fmt.Errorf("read facets: %w", err)
	}
	if len(facets) > 0 {
		l := line{Facets: make(map[string]chiTransport.FacetResponse, len(facets))}
		for name, f := range facets {
			l.Facets[name] = chiTransport.NewFacetResponse(f)
		}
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("write facets: %w", err)
		}
	}

	md, err := res.Metadata(ctx)
	if err != nil {
		return fmt.Errorf("read metadata: %w", err)
	}
	out := chiTransport.NewMetadataResponse(md)
	if err := enc.Encode(line{Metadata: &out}); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func pickIndex(flag string, doc *querydoc.Document) string {
	if flag != "" {
		return flag
	}
	return doc.Index
}
