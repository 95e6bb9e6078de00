package fts

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	endpoint     string
	pingEndpoint string
	token        string
	httpClient   *http.Client

	streamingTimeout time.Duration
	defaults         []SearchOption

	embedder Embedder
	openai   *openAIConfig

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

type openAIConfig struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
}

// WithEndpoint sets the engine URL search requests are POSTed to. Required.
func WithEndpoint(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.endpoint = url
	})
}

// WithPingEndpoint sets the URL fetched by Ping. Ping is a no-op without it.
func WithPingEndpoint(url string) Option {
	return optionFunc(func(c *clientConfig) {
		c.pingEndpoint = url
	})
}

// WithToken sends a bearer token with every engine request.
func WithToken(token string) Option {
	return optionFunc(func(c *clientConfig) {
		c.token = token
	})
}

// WithHTTPClient replaces the HTTP client used to reach the engine.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithStreamingTimeout bounds the wait for each row. 0 disables it (default).
func WithStreamingTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.streamingTimeout = d
	})
}

// WithDefaults sets search options applied to every request before the
// per-call options. They are validated by New.
func WithDefaults(opts ...SearchOption) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaults = append(c.defaults, opts...)
	})
}

// WithEmbedder sets the provider used for text vector queries in search documents.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithOpenAIEmbedder embeds text vector queries through an OpenAI-compatible API.
// dimensions = 0 keeps the model default.
func WithOpenAIEmbedder(apiKey, baseURL, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &openAIConfig{apiKey: apiKey, baseURL: baseURL, model: model, dimensions: dimensions}
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
