package fts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/domain/search/options"
	"github.com/kailas-cloud/fts/internal/engine/httpengine"
	"github.com/kailas-cloud/fts/internal/querydoc"
	openaiEmb "github.com/kailas-cloud/fts/internal/transport/openai"
	searchuc "github.com/kailas-cloud/fts/internal/usecase/search"
)

// Client is the fts SDK entry point. It is safe for concurrent use.
type Client struct {
	svc      *searchuc.Service
	engine   *httpengine.Engine
	defaults *options.Options
	embedder domain.Embedder
	obs      *observer
}

// New creates a Client for the engine at WithEndpoint. No connection is made.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.endpoint == "" {
		return nil, errors.New("fts: endpoint is required (use WithEndpoint)")
	}

	defaults, err := options.New(cfg.defaults...)
	if err != nil {
		return nil, fmt.Errorf("fts: default search options: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	eng := httpengine.New(&httpengine.Config{
		Endpoint:     cfg.endpoint,
		PingEndpoint: cfg.pingEndpoint,
		Token:        cfg.token,
		HTTPClient:   cfg.httpClient,
	})

	var emb domain.Embedder
	switch {
	case cfg.embedder != nil:
		emb = &embedderAdapter{inner: cfg.embedder}
	case cfg.openai != nil:
		emb = openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.openai.apiKey,
			BaseURL:    cfg.openai.baseURL,
			Model:      cfg.openai.model,
			Dimensions: cfg.openai.dimensions,
		})
	}

	return &Client{
		svc:      searchuc.New(eng, searchuc.Config{StreamingTimeout: cfg.streamingTimeout}),
		engine:   eng,
		defaults: defaults,
		embedder: emb,
		obs:      obs,
	}, nil
}

// Ping checks engine availability.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if err = c.engine.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Encode returns the JSON request body req would be sent with, without
// executing it. Validation errors surface here.
func (c *Client) Encode(index string, req *Request, opts ...SearchOption) (data []byte, err error) {
	start := time.Now()
	defer func() { c.obs.observe("encode", index, start, err) }()

	_, body, err := c.svc.Encode(index, req, c.defaults, opts...)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	data, err = body.Marshal()
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	return data, nil
}

// Search executes req against index. The Result streams rows and must be
// closed. Options given here win over WithDefaults.
func (c *Client) Search(ctx context.Context, index string, req *Request, opts ...SearchOption) (res *Result, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", index, start, err) }()

	res, err = c.svc.Search(ctx, index, req, c.defaults, opts...)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return res, nil
}

// Collect executes req and reads the whole response.
func (c *Client) Collect(ctx context.Context, index string, req *Request, opts ...SearchOption) (resp *Response, err error) {
	start := time.Now()
	defer func() { c.obs.observe("collect", index, start, err) }()

	resp, err = c.svc.Collect(ctx, index, req, c.defaults, opts...)
	if err != nil {
		return nil, fmt.Errorf("collect: %w", err)
	}
	return resp, nil
}

// Query is Collect for a request with a single query and no vector search.
func (c *Client) Query(ctx context.Context, index string, q Query, opts ...SearchOption) (*Response, error) {
	return c.Collect(ctx, index, FromQuery(q), opts...)
}

// SearchDocument decodes a JSON or YAML search document and collects its
// response. Text vector queries need WithEmbedder or WithOpenAIEmbedder.
func (c *Client) SearchDocument(ctx context.Context, data []byte) (*Response, error) {
	doc, err := querydoc.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("search document: %w", err)
	}
	return c.Document(ctx, doc)
}

// Document collects the response of a decoded search document.
func (c *Client) Document(ctx context.Context, doc *Document) (*Response, error) {
	var emb querydoc.Embedder
	if c.embedder != nil {
		emb = c.embedder
	}
	req, err := doc.Request(ctx, emb)
	if err != nil {
		c.obs.observe("collect", doc.Index, time.Now(), err)
		return nil, fmt.Errorf("search document: %w", err)
	}
	return c.Collect(ctx, doc.Index, req, doc.Options...)
}
