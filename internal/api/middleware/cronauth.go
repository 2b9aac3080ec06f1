package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/remindful/remindful/internal/api/models"
)

// CronAuth guards the externally triggered scan endpoint with a static
// bearer credential. An empty secret leaves the endpoint open, which is the
// expected setup when the scheduler runs in-process and the endpoint is only
// used for local testing.
func CronAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			if len(authHeader) < len(bearerPrefix) ||
				!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
				writeProblem(w, r, models.NewUnauthorized(GetRequestID(r.Context()), "missing bearer credential"))
				return
			}

			token := authHeader[len(bearerPrefix):]
			if subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
				writeProblem(w, r, models.NewUnauthorized(GetRequestID(r.Context()), "invalid bearer credential"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
