package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the FTS gateway configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Engine    EngineConfig    `yaml:"engine"`
	Cache     CacheConfig     `yaml:"cache"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"` // "token" or "token:index1,index2"
}

// RateLimitConfig holds per-client rate limiting settings.
type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"` // 0 = disabled
	Burst int     `yaml:"burst"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int   `yaml:"port"`
	ReadTimeoutSec  int   `yaml:"read_timeout_sec"`
	WriteTimeoutSec int   `yaml:"write_timeout_sec"`
	ShutdownSec     int   `yaml:"shutdown_timeout_sec"`
	MaxBodyBytes    int64 `yaml:"max_body_bytes"`
}

// EngineConfig holds the execution engine connection settings.
type EngineConfig struct {
	Endpoint           string `yaml:"endpoint"`
	PingEndpoint       string `yaml:"ping_endpoint"`
	Token              string `yaml:"token"`
	StreamingTimeoutMs int    `yaml:"streaming_timeout_ms"` // 0 = no per-row deadline
	RequestTimeoutSec  int    `yaml:"request_timeout_sec"`
}

// StreamingTimeout returns the per-row read deadline.
func (c EngineConfig) StreamingTimeout() time.Duration {
	return time.Duration(c.StreamingTimeoutMs) * time.Millisecond
}

// RequestTimeout returns the HTTP client timeout for a whole engine call.
func (c EngineConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSec) * time.Second
}

// CacheConfig holds the response and embedding cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	TTLSec           int      `yaml:"ttl_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	MaxRows          int      `yaml:"max_rows"`
	ClientCacheSec   int      `yaml:"client_cache_sec"` // 0 = no client-side caching
}

// TTL returns the cache entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// ClientCacheTTL returns how long GET results may be served from local memory.
func (c CacheConfig) ClientCacheTTL() time.Duration {
	return time.Duration(c.ClientCacheSec) * time.Second
}

// EmbeddingConfig holds the embedding provider for vector-query text.
// The provider is disabled when Model is empty.
type EmbeddingConfig struct {
	Provider      string `yaml:"provider"`
	APIKey        string `yaml:"api_key"`
	BaseURL       string `yaml:"base_url"`
	Model         string `yaml:"model"`
	Dimensions    int    `yaml:"dimensions"`
	Instruction   string `yaml:"instruction"`
	MaxTextLength int    `yaml:"max_text_length"`
	TimeoutSec    int    `yaml:"timeout_sec"`
}

// Enabled reports whether text vector queries can be embedded.
func (c EmbeddingConfig) Enabled() bool { return c.Model != "" }

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML configuration.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.MaxBodyBytes <= 0 {
		c.HTTP.MaxBodyBytes = 1 << 20
	}
	if c.Engine.RequestTimeoutSec <= 0 {
		c.Engine.RequestTimeoutSec = 30
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 60
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "fts:"
	}
	if c.Cache.MaxRows <= 0 {
		c.Cache.MaxRows = 1000
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 10
	}
	if c.RateLimit.RPS > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = int(c.RateLimit.RPS) + 1
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Engine.Endpoint == "" {
		return fmt.Errorf("engine.endpoint is required")
	}
	if u, err := url.Parse(c.Engine.Endpoint); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("engine.endpoint must be an absolute URL, got %q", c.Engine.Endpoint)
	}
	if c.Engine.StreamingTimeoutMs < 0 {
		return fmt.Errorf("engine.streaming_timeout_ms must not be negative, got %d", c.Engine.StreamingTimeoutMs)
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		return fmt.Errorf("cache.addrs is required when cache is enabled")
	}
	if c.Cache.ClientCacheSec < 0 {
		return fmt.Errorf("cache.client_cache_sec must not be negative, got %d", c.Cache.ClientCacheSec)
	}
	if c.Embedding.Enabled() && c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	if c.RateLimit.RPS < 0 {
		return fmt.Errorf("rate_limit.rps must not be negative, got %v", c.RateLimit.RPS)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
