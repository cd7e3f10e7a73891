package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/semantis/zalr-backend/internal/api"
)

type contextKey string

// ServiceKeyAuth guards admin routes with the configured service role key.
// The comparison is constant time so the key cannot be probed byte by byte.
func ServiceKeyAuth(serviceKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if serviceKey == "" {
				api.Error(w, http.StatusServiceUnavailable, "admin API is not configured")
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")
			if subtle.ConstantTimeCompare([]byte(token), []byte(serviceKey)) != 1 {
				api.Error(w, http.StatusUnauthorized, "invalid service key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
