package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	searchuc "github.com/kailas-cloud/fts/internal/usecase/search"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func authRequest(t *testing.T, h http.Handler, path, authorization string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{"query":{"match_all":null}}`))
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestParseAPIKey(t *testing.T) {
	tests := []struct {
		in      string
		ok      bool
		token   string
		indexes []string
	}{
		{"secret", true, "secret", nil},
		{" secret ", true, "secret", nil},
		{"secret:hotels, airports", true, "secret", []string{"hotels", "airports"}},
		{"secret:", true, "secret", []string{}},
		{"", false, "", nil},
		{":hotels", false, "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			k, ok := parseAPIKey(tt.in)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if string(k.token) != tt.token {
				t.Errorf("token = %q, want %q", k.token, tt.token)
			}
			if tt.indexes == nil {
				if k.indexes != nil {
					t.Errorf("indexes = %v, want unrestricted", k.indexes)
				}
				return
			}
			if len(k.indexes) != len(tt.indexes) {
				t.Fatalf("indexes = %v, want %v", k.indexes, tt.indexes)
			}
			for _, idx := range tt.indexes {
				if !k.allows(idx) {
					t.Errorf("index %q not allowed", idx)
				}
			}
		})
	}
}

func TestAuthMiddleware_Disabled(t *testing.T) {
	for _, keys := range [][]string{nil, {"", " "}} {
		h := BearerAuthMiddleware(keys)(okHandler())
		if rr := authRequest(t, h, "/v1/indexes/hotels/query", ""); rr.Code != http.StatusOK {
			t.Errorf("keys %q: got %d, want %d", keys, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"})(okHandler())

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"basic scheme", "Basic dXNlcjpwYXNz"},
		{"empty token", "Bearer "},
		{"wrong token", "Bearer wrong-key"},
		{"token prefix", "Bearer secre"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := authRequest(t, h, "/v1/indexes/hotels/query", tt.header)
			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("got %d, want %d", rr.Code, http.StatusUnauthorized)
			}
			if !strings.HasPrefix(rr.Header().Get("WWW-Authenticate"), "Bearer") {
				t.Errorf("WWW-Authenticate = %q", rr.Header().Get("WWW-Authenticate"))
			}

			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != ErrorCodeUnauthorized {
				t.Errorf("error code: got %s, want %s", errResp.Code, ErrorCodeUnauthorized)
			}
		})
	}
}

func TestAuthMiddleware_Accepts(t *testing.T) {
	h := BearerAuthMiddleware([]string{"key1", "key2:hotels"})(okHandler())

	for _, header := range []string{"Bearer key1", "bearer key2"} {
		if rr := authRequest(t, h, "/v1/indexes/hotels/query", header); rr.Code != http.StatusOK {
			t.Errorf("%q: got %d, want %d", header, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_ExemptPaths(t *testing.T) {
	h := BearerAuthMiddleware([]string{"secret"})(okHandler())

	for _, path := range []string{"/health", "/metrics"} {
		if rr := authRequest(t, h, path, ""); rr.Code != http.StatusOK {
			t.Errorf("exempt path %s: got %d, want %d", path, rr.Code, http.StatusOK)
		}
	}
}

func TestAuthMiddleware_IndexScope(t *testing.T) {
	r := chi.NewRouter()
	r.Use(BearerAuthMiddleware([]string{"admin", "reader:hotels"}))
	NewServer(searchuc.New(cannedEngine(), searchuc.Config{}), nil, Config{}).Routes(r)

	tests := []struct {
		name   string
		token  string
		path   string
		status int
	}{
		{"scoped key own index", "reader", "/v1/indexes/hotels/query", http.StatusOK},
		{"scoped key other index", "reader", "/v1/indexes/airports/query", http.StatusForbidden},
		{"scoped key encode other index", "reader", "/v1/indexes/airports/query:encode", http.StatusForbidden},
		{"unscoped key", "admin", "/v1/indexes/airports/query", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := authRequest(t, r, tt.path, "Bearer "+tt.token)
			if rr.Code != tt.status {
				t.Fatalf("got %d, want %d: %s", rr.Code, tt.status, rr.Body.String())
			}
			if tt.status != http.StatusForbidden {
				return
			}
			var errResp ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
				t.Fatalf("decode error response: %v", err)
			}
			if errResp.Code != ErrorCodeForbidden {
				t.Errorf("error code: got %s, want %s", errResp.Code, ErrorCodeForbidden)
			}
		})
	}
}
