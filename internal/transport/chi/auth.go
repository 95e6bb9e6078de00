package chi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// exemptPaths are routes that bypass authentication and rate limiting (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// apiKey is a bearer token, optionally restricted to a set of indexes.
// A nil index set grants every index.
type apiKey struct {
	token   []byte
	indexes map[string]struct{}
}

type apiKeyCtxKey struct{}

// parseAPIKey parses "token" or "token:index1,index2".
func parseAPIKey(s string) (apiKey, bool) {
	token, scope, scoped := strings.Cut(strings.TrimSpace(s), ":")
	if token == "" {
		return apiKey{}, false
	}
	k := apiKey{token: []byte(token)}
	if !scoped {
		return k, true
	}
	k.indexes = make(map[string]struct{})
	for _, idx := range strings.Split(scope, ",") {
		if idx = strings.TrimSpace(idx); idx != "" {
			k.indexes[idx] = struct{}{}
		}
	}
	return k, true
}

func (k *apiKey) allows(index string) bool {
	if k.indexes == nil {
		return true
	}
	_, ok := k.indexes[index]
	return ok
}

// BearerAuthMiddleware returns a middleware that validates Bearer tokens.
// Each entry of apiKeys is a token, optionally followed by ":" and a comma
// separated list of the indexes it may search. If apiKeys has no usable
// entry, authentication is disabled (pass-through).
func BearerAuthMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	keys := make([]apiKey, 0, len(apiKeys))
	for _, s := range apiKeys {
		if k, ok := parseAPIKey(s); ok {
			keys = append(keys, k)
		}
	}

	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := bearerToken(r)
			if !ok {
				w.Header().Set("WWW-Authenticate", `Bearer realm="fts"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized,
					"authorization header must carry a Bearer token")
				return
			}

			k := matchKey(keys, token)
			if k == nil {
				w.Header().Set("WWW-Authenticate", `Bearer realm="fts", error="invalid_token"`)
				writeError(w, http.StatusUnauthorized, ErrorCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), apiKeyCtxKey{}, k)))
		})
	}
}

func bearerToken(r *http.Request) ([]byte, bool) {
	scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return nil, false
	}
	return []byte(token), true
}

// matchKey compares token against every key so timing does not reveal
// which one matched.
func matchKey(keys []apiKey, token []byte) *apiKey {
	var found *apiKey
	for i := range keys {
		if subtle.ConstantTimeCompare(keys[i].token, token) == 1 {
			found = &keys[i]
		}
	}
	return found
}

// indexAllowed reports whether the authenticated key may search index.
// Requests that were not authenticated (auth disabled) may search any index.
func indexAllowed(ctx context.Context, index string) bool {
	k, ok := ctx.Value(apiKeyCtxKey{}).(*apiKey)
	if !ok {
		return true
	}
	return k.allows(index)
}
