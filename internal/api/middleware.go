// Package api implements the assistant REST API using chi.
package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// eventsPath is the only route that may pass the token as ?access_token=,
// since EventSource clients cannot set headers.
const eventsPath = "/events"

// bearerToken extracts the credential from the request, or "".
func bearerToken(r *http.Request) string {
	scheme, cred, ok := strings.Cut(r.Header.Get("Authorization"), " ")
	if ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(cred)
	}
	if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, eventsPath) {
		return r.URL.Query().Get("access_token")
	}
	return ""
}

// AuthMiddleware rejects requests without the configured bearer token.
// When enabled is false it is a pass-through.
func AuthMiddleware(enabled bool, token string) func(http.Handler) http.Handler {
	want := []byte(token)
	return func(next http.Handler) http.Handler {
		if !enabled {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := bearerToken(r)
			if got == "" || subtle.ConstantTimeCompare([]byte(got), want) != 1 {
				w.Header().Set("WWW-Authenticate", `Bearer realm="assistant"`)
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
