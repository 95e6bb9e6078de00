package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fts/internal/config"
	dbRedis "github.com/kailas-cloud/fts/internal/db/redis"
	"github.com/kailas-cloud/fts/internal/domain"
	"github.com/kailas-cloud/fts/internal/engine/httpengine"
	logpkg "github.com/kailas-cloud/fts/internal/logger"
	"github.com/kailas-cloud/fts/internal/metrics"
	"github.com/kailas-cloud/fts/internal/repository/embcache"
	"github.com/kailas-cloud/fts/internal/repository/respcache"
	chiTransport "github.com/kailas-cloud/fts/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/fts/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/fts/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/fts/internal/usecase/health"
	searchuc "github.com/kailas-cloud/fts/internal/usecase/search"
	"github.com/kailas-cloud/fts/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting fts search gateway",
		zap.String("version", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("engine", cfg.Engine.Endpoint),
		zap.Bool("cache", cfg.Cache.Enabled),
		zap.Bool("embedding", cfg.Embedding.Enabled()),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterEmbeddingMetrics()

	httpEngine := httpengine.New(&httpengine.Config{
		Endpoint:     cfg.Engine.Endpoint,
		PingEndpoint: cfg.Engine.PingEndpoint,
		Token:        cfg.Engine.Token,
		HTTPClient:   &http.Client{Timeout: cfg.Engine.RequestTimeout()},
		Logger:       logger,
	})

	ctx := context.Background()

	// Optional cache store. Keep the interfaces nil (not typed nil pointers) when disabled.
	var store *dbRedis.Store
	var cachePinger healthuc.Pinger
	var searchEngine searchuc.Engine = httpEngine
	if cfg.Cache.Enabled {
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:          cfg.Cache.Addrs,
			Password:       cfg.Cache.Password,
			ClientCacheTTL: cfg.Cache.ClientCacheTTL(),
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))

		cachePinger = store
		searchEngine = respcache.New(httpEngine, store, respcache.Config{
			KeyPrefix:  cfg.Cache.KeyPrefix,
			TTL:        cfg.Cache.TTL(),
			MaxRows:    cfg.Cache.MaxRows,
			CacheTotal: metrics.ResponseCacheTotal,
			Logger:     logger,
		})
	}

	var queryEmbedder domain.Embedder
	var embeddingChecker healthuc.EmbeddingChecker
	if cfg.Embedding.Enabled() {
		emb := buildEmbedder(cfg.Embedding, cfg.Cache, store, logger)
		queryEmbedder = emb
		embeddingChecker = emb
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	}

	searchSvc := searchuc.New(searchEngine, searchuc.Config{
		StreamingTimeout: cfg.Engine.StreamingTimeout(),
		Logger:           logger,
	})
	healthSvc := healthuc.New(httpEngine, cachePinger, embeddingChecker)

	server := chiTransport.NewServer(searchSvc, healthSvc, chiTransport.Config{
		Embedder:     queryEmbedder,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
		Logger:       logger,
	})

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(chiTransport.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// gatewayEmbedder is what the gateway needs from the embedding chain.
type gatewayEmbedder interface {
	domain.Embedder
	domain.HealthChecker
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction.
func buildEmbedder(
	embCfg config.EmbeddingConfig,
	cacheCfg config.CacheConfig,
	store *dbRedis.Store,
	logger *zap.Logger,
) gatewayEmbedder {
	// Base provider (with transport metrics built-in)
	base := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:         embCfg.APIKey,
		BaseURL:        embCfg.BaseURL,
		Model:          embCfg.Model,
		Dimensions:     embCfg.Dimensions,
		Provider:       embCfg.Provider,
		RequestTimeout: time.Duration(embCfg.TimeoutSec) * time.Second,
		Logger:         logger,
	})

	var inner domain.Embedder = base
	if store != nil {
		inner = embcache.New(base, store, embcache.Config{
			KeyPrefix:  cacheCfg.KeyPrefix,
			TTL:        cacheCfg.TTL(),
			Provider:   embCfg.Provider,
			Model:      embCfg.Model,
			Dimensions: embCfg.Dimensions,
			CacheTotal: metrics.EmbeddingCacheTotal,
			Logger:     logger,
		})
	}

	var embedder gatewayEmbedder = embeddinguc.NewInstrumentedEmbedder(inner, embeddinguc.Config{
		Provider:      embCfg.Provider,
		Model:         embCfg.Model,
		MaxTextLength: embCfg.MaxTextLength,
		Logger:        logger,
	})

	// Instruction prefix (outermost, so the cache key includes it)
	if embCfg.Instruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, embCfg.Instruction)
	}
	return embedder
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
