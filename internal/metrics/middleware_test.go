package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/v1/indexes/{index}/query", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"rows":[]}`))
	})

	for _, index := range []string{"hotels", "airports"} {
		req := httptest.NewRequest(http.MethodPost, "/v1/indexes/"+index+"/query", http.NoBody)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != http.StatusOK {
			t.Fatalf("status = %d", rr.Code)
		}
	}

	got := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", "/v1/indexes/{index}/query", "200"))
	if got < 2 {
		t.Errorf("requests_total for route pattern = %f, want >= 2", got)
	}
	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("request_duration_seconds has no observations")
	}
	if testutil.CollectAndCount(httpResponseBytes) == 0 {
		t.Error("response_bytes has no observations")
	}
	if v := testutil.ToFloat64(httpInFlight); v != 0 {
		t.Errorf("in_flight_requests = %f after requests finished", v)
	}
}

func TestMiddleware_StatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Post("/bad", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})
	r.Post("/upstream", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.WriteHeader(http.StatusOK) // ignored, first status wins
	})

	tests := []struct {
		path string
		code string
	}{
		{"/bad", "400"},
		{"/upstream", "502"},
	}
	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, tc.path, http.NoBody))

			if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("POST", tc.path, tc.code)); v < 1 {
				t.Errorf("requests_total{code=%s} = %f", tc.code, v)
			}
		})
	}
}

func TestMiddleware_UnmatchedRoute(t *testing.T) {
	h := Middleware()(http.NotFoundHandler())

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nowhere", http.NoBody))

	if v := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", unmatchedRoute, "404")); v < 1 {
		t.Errorf("requests_total{route=%s} = %f", unmatchedRoute, v)
	}
}

func TestRegister_Idempotent(t *testing.T) {
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()
	RegisterSearchMetrics()
	RegisterSearchMetrics()

	SearchRequestsTotal.WithLabelValues("hotels", "ok").Inc()
	if v := testutil.ToFloat64(SearchRequestsTotal.WithLabelValues("hotels", "ok")); v < 1 {
		t.Errorf("search_requests_total = %f", v)
	}
}
