package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional component failed.
	Degraded Status = "degraded"
	// Unhealthy indicates the execution engine is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Component names used as Report.Checks keys.
const (
	ComponentEngine    = "engine"
	ComponentCache     = "cache"
	ComponentEmbedding = "embedding"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 3 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	engine    Pinger
	cache     Pinger
	embedding EmbeddingChecker
	timeout   time.Duration
}

// New creates a Service. cache and embedding can be nil.
func New(engine, cache Pinger, embedding EmbeddingChecker) *Service {
	return &Service{engine: engine, cache: cache, embedding: embedding, timeout: DefaultCheckTimeout}
}

// WithCheckTimeout sets the per-component check deadline.
func (s *Service) WithCheckTimeout(d time.Duration) *Service {
	if d > 0 {
		s.timeout = d
	}
	return s
}

type probe struct {
	name string
	fn   func(ctx context.Context) error
}

// Check runs the component checks concurrently, each under its own deadline.
// A failing engine makes the gateway unhealthy; any other failure degrades it.
func (s *Service) Check(ctx context.Context) Report {
	probes := []probe{{ComponentEngine, s.engine.Ping}}
	if s.cache != nil {
		probes = append(probes, probe{ComponentCache, s.cache.Ping})
	}
	if s.embedding != nil {
		probes = append(probes, probe{ComponentEmbedding, s.embedding.HealthCheck})
	}

	results := make([]CheckResult, len(probes))
	var wg sync.WaitGroup
	for i, p := range probes {
		wg.Go(func() {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = result(p.fn(pctx))
		})
	}
	wg.Wait()

	checks := make(map[string]CheckResult, len(probes))
	for i, p := range probes {
		checks[p.name] = results[i]
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks[ComponentEngine] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
