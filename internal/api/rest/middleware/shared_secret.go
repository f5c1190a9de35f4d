package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
)

// SharedSecretAuth admits only requests bearing the static secret shared with the
// upstream platform. Every failure gets the same response.
func SharedSecretAuth(secret string, logger *slog.Logger) Middleware {
	expected := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractBearerToken(r)
			if err != nil || len(expected) == 0 || subtle.ConstantTimeCompare([]byte(token), expected) != 1 {
				logger.Warn("Rejected upstream request", "path", r.URL.Path, "remote_addr", r.RemoteAddr)
				writeUnauthorized(w, "Invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
