package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/knuut/knuut-api/internal/api/models"
)

// CronAuth protects scheduler-triggered endpoints with a shared bearer
// secret. The comparison is constant-time, and rejection happens before
// the wrapped handler reads anything: an unauthenticated trigger must have
// no side effects. An empty secret rejects every request rather than
// leaving the trigger open.
func CronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				writeUnauthorized(w, r, "trigger secret not configured")
				return
			}

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeUnauthorized(w, r, "missing bearer token")
				return
			}

			token := authHeader[len(bearerPrefix):]
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				writeUnauthorized(w, r, "invalid trigger secret")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// writeUnauthorized writes a 401 Unauthorized response.
// Implemented directly here to avoid an import cycle with the response package.
func writeUnauthorized(w http.ResponseWriter, r *http.Request, detail string) {
	traceID := GetRequestID(r.Context())
	problem := models.NewUnauthorized(traceID, detail)
	problem.Instance = r.URL.Path
	problem.Write(w)
}
