package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() Config {
	return Config{
		HTTP:   HTTPConfig{Port: 8080},
		Engine: EngineConfig{Endpoint: "http://localhost:8094/api/query"},
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`
http:
  port: 8080
engine:
  endpoint: http://localhost:8094/api/query
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.HTTP.ReadTimeoutSec != 10 || cfg.HTTP.WriteTimeoutSec != 30 || cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("http timeouts = %+v", cfg.HTTP)
	}
	if cfg.HTTP.MaxBodyBytes != 1<<20 {
		t.Errorf("max body = %d", cfg.HTTP.MaxBodyBytes)
	}
	if cfg.Engine.RequestTimeout() != 30*time.Second {
		t.Errorf("request timeout = %v", cfg.Engine.RequestTimeout())
	}
	if cfg.Engine.StreamingTimeout() != 0 {
		t.Errorf("streaming timeout = %v", cfg.Engine.StreamingTimeout())
	}
	if cfg.Cache.KeyPrefix != "fts:" || cfg.Cache.TTL() != time.Minute || cfg.Cache.MaxRows != 1000 {
		t.Errorf("cache = %+v", cfg.Cache)
	}
	if cfg.Embedding.Enabled() {
		t.Error("embedding enabled without a model")
	}
	if cfg.Embedding.Provider != "openai" {
		t.Errorf("embedding provider = %q", cfg.Embedding.Provider)
	}
}

func TestParse_EnvExpansion(t *testing.T) {
	t.Setenv("FTS_ENGINE", "http://engine:8094/api/query")
	t.Setenv("FTS_KEY", "secret")

	cfg, err := Parse([]byte(`
http:
  port: ${FTS_PORT:-9090}
engine:
  endpoint: ${FTS_ENGINE}
  streaming_timeout_ms: 250
auth:
  api_keys: ["${FTS_KEY}"]
rate_limit:
  rps: 5
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, expected default 9090", cfg.HTTP.Port)
	}
	if cfg.Engine.Endpoint != "http://engine:8094/api/query" {
		t.Errorf("endpoint = %q", cfg.Engine.Endpoint)
	}
	if cfg.Engine.StreamingTimeout() != 250*time.Millisecond {
		t.Errorf("streaming timeout = %v", cfg.Engine.StreamingTimeout())
	}
	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "secret" {
		t.Errorf("api keys = %v", cfg.Auth.APIKeys)
	}
	if cfg.RateLimit.Burst != 6 {
		t.Errorf("burst = %d, expected 6", cfg.RateLimit.Burst)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"ok", func(*Config) {}, ""},
		{"port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"no endpoint", func(c *Config) { c.Engine.Endpoint = "" }, "engine.endpoint is required"},
		{"relative endpoint", func(c *Config) { c.Engine.Endpoint = "/api/query" }, "absolute URL"},
		{"negative streaming", func(c *Config) { c.Engine.StreamingTimeoutMs = -1 }, "streaming_timeout_ms"},
		{"cache without addrs", func(c *Config) { c.Cache.Enabled = true }, "cache.addrs"},
		{"cache with addrs", func(c *Config) {
			c.Cache.Enabled = true
			c.Cache.Addrs = []string{"localhost:6379"}
		}, ""},
		{"negative client cache", func(c *Config) { c.Cache.ClientCacheSec = -1 }, "cache.client_cache_sec"},
		{"negative dimensions", func(c *Config) {
			c.Embedding.Model = "bge"
			c.Embedding.Dimensions = -1
		}, "embedding.dimensions"},
		{"negative rps", func(c *Config) { c.RateLimit.RPS = -1 }, "rate_limit.rps"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, expected local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, expected prod", got)
	}
}
