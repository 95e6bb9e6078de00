package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "fts"

// Search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Total number of search requests by outcome",
		},
		[]string{"index", "status"}, // "ok" / "invalid" / "engine_error"
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Time from request build to the first row being available",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"index"},
	)

	SearchRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_rows_total",
			Help:      "Total number of rows streamed to callers",
		},
		[]string{"index"},
	)

	SearchPartialTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_partial_total",
			Help:      "Searches whose metadata reported failed partitions",
		},
		[]string{"index"},
	)

	EngineRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "engine_request_duration_seconds",
			Help:      "Execution engine round trip until the response headers arrive",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"status"},
	)

	ResponseCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_total",
			Help:      "Search response cache lookups",
		},
		[]string{"result"}, // "hit" / "miss" / "bypass"
	)

	RateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the gateway rate limiter",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(SearchRequestsTotal)
	prometheus.MustRegister(SearchDuration)
	prometheus.MustRegister(SearchRowsTotal)
	prometheus.MustRegister(SearchPartialTotal)
	prometheus.MustRegister(EngineRequestDuration)
	prometheus.MustRegister(ResponseCacheTotal)
	prometheus.MustRegister(RateLimitedTotal)
	searchMetricsRegistered = true
}
