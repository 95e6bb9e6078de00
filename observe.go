package fts

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/fts/internal/domain"
)

// sdkMetrics holds prometheus metrics registered for the SDK.
type sdkMetrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fts",
			Subsystem: "sdk",
			Name:      "operations_total",
			Help:      "Total SDK operations by type, index and outcome.",
		}, []string{"operation", "index", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "fts",
			Subsystem: "sdk",
			Name:      "operation_duration_seconds",
			Help:      "SDK operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "index"}),
	}
	if err := registerOrReuse(reg, &m.operations); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers a collector or reuses an existing one.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("fts: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("fts: register metric: %w", err)
	}
	return nil
}

// observer provides logging and metrics for SDK operations.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

// status classifies an operation outcome: ok, invalid (caller error) or error.
func status(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrMissingRequiredField),
		errors.Is(err, domain.ErrNoBoundSpecified),
		errors.Is(err, domain.ErrNoChildQueries):
		return "invalid"
	default:
		return "error"
	}
}

func (o *observer) observe(op, index string, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	st := status(err)

	if o.metrics != nil {
		o.metrics.operations.WithLabelValues(op, index, st).Inc()
		o.metrics.duration.WithLabelValues(op, index).Observe(dur.Seconds())
	}

	if o.logger == nil {
		return
	}
	switch st {
	case "ok":
		o.logger.Debug("operation completed", "op", op, "index", index, "duration", dur)
	case "invalid":
		o.logger.Info("operation rejected", "op", op, "index", index, "error", err)
	default:
		o.logger.Warn("operation failed", "op", op, "index", index, "duration", dur, "error", err)
	}
}
