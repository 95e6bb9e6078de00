// Package chi exposes the search gateway over HTTP with a chi router.
package chi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/fts/internal/domain"
	logpkg "github.com/kailas-cloud/fts/internal/logger"
	"github.com/kailas-cloud/fts/internal/querydoc"
	healthuc "github.com/kailas-cloud/fts/internal/usecase/health"
	searchuc "github.com/kailas-cloud/fts/internal/usecase/search"
)

// DefaultMaxBodyBytes caps the size of a search document.
const DefaultMaxBodyBytes = 1 << 20

// EmbeddingTokensHeader reports the tokens spent embedding vector-query text.
const EmbeddingTokensHeader = "X-Embedding-Tokens"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Config holds optional server settings.
type Config struct {
	// Embedder turns text vector queries into vectors. Nil rejects them.
	Embedder     querydoc.Embedder
	MaxBodyBytes int64
	Logger       *zap.Logger
}

// Server serves the search gateway routes.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	embedder      querydoc.Embedder
	maxBodyBytes  int64
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, cfg Config) *Server {
	s := &Server{
		search:       search,
		health:       health,
		embedder:     cfg.Embedder,
		maxBodyBytes: cfg.MaxBodyBytes,
		logger:       cfg.Logger,
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.errorHandlers = []errorHandler{
		validationHandler(domain.ErrMissingRequiredField),
		validationHandler(domain.ErrInvalidArgument),
		validationHandler(domain.ErrNoBoundSpecified),
		validationHandler(domain.ErrNoChildQueries),
		sentinelHandler(domain.ErrLookupNotFound, http.StatusNotFound, ErrorCodeNotFound),
		sentinelHandler(domain.ErrEngineUnavailable, http.StatusBadGateway, ErrorCodeEngineUnavailable),
		sentinelHandler(domain.ErrSearchFailed, http.StatusBadGateway, ErrorCodeSearchFailed),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
	}
	return s
}

// Routes registers the gateway routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/indexes/{index}/query", s.Query)
	r.Post("/v1/indexes/{index}/query:encode", s.Encode)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// Query handles POST /v1/indexes/{index}/query.
func (s *Server) Query(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	ctx, usage := domain.NewContextWithUsage(r.Context())
	req, err := doc.Request(ctx, s.embedder)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if usage.Calls() > 0 {
		w.Header().Set(EmbeddingTokensHeader, strconv.Itoa(usage.Tokens()))
	}

	index := chi.URLParam(r, "index")
	ctx = logpkg.With(ctx, zap.String("index", index))
	resp, err := s.search.Collect(ctx, index, req, nil, doc.Options...)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if resp.Metadata.Partial() {
		w.Header().Set("X-Partial-Results", "true")
	}
	writeJSON(w, http.StatusOK, NewSearchResponse(resp))
}

// Encode handles POST /v1/indexes/{index}/query:encode. It returns the
// body that would be sent to the engine.
func (s *Server) Encode(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readDocument(w, r)
	if !ok {
		return
	}
	req, err := doc.Request(r.Context(), s.embedder)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	_, body, err := s.search.Encode(chi.URLParam(r, "index"), req, nil, doc.Options...)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, body)
}

// HealthCheck handles GET /health. Only an unreachable engine fails it.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	// A degraded gateway still serves searches, only without cache or text vectors.
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*querydoc.Document, bool) {
	if index := chi.URLParam(r, "index"); !indexAllowed(r.Context(), index) {
		writeError(w, http.StatusForbidden, ErrorCodeForbidden, "api key may not search index "+index)
		return nil, false
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrorCodeBadRequest, "search document too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return nil, false
	}
	doc, err := querydoc.Decode(data)
	if err != nil {
		s.handleDomainError(w, r, err)
		return nil, false
	}
	return doc, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// validationHandler reports caller mistakes with the full error text.
func validationHandler(sentinel error) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, err.Error())
		return true
	}
}

// sentinelHandler returns an errorHandler that matches a single sentinel
// error and exposes only the sentinel text.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, sentinel.Error())
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logpkg.FromContextOr(r.Context(), s.logger)
	logger.Warn("domain error", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
