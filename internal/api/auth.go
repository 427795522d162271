package api

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

const bearerPrefix = "Bearer "

// BearerAuth guards the session routes with a static API token. The
// comparison is constant-time so the token length and contents do not leak
// through response timing.
func BearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, bearerPrefix) {
				httpError(w, http.StatusUnauthorized, "authentication_error", "missing bearer token")
				return
			}
			presented := header[len(bearerPrefix):]
			if subtle.ConstantTimeCompare([]byte(presented), []byte(token)) != 1 {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid API token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
