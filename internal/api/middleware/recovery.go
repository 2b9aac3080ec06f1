package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/remindful/remindful/internal/api/models"
)

// Recovery converts handler panics into 500 problem responses so one bad
// request cannot take the server down with it.
func Recovery(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					requestID := GetRequestID(r.Context())

					log.Error().
						Str("request_id", requestID).
						Str("method", r.Method).
						Str("path", r.URL.Path).
						Interface("panic", rec).
						Bytes("stack", debug.Stack()).
						Msg("handler panicked")

					writeProblem(w, r, models.NewInternalError(requestID, "an unexpected error occurred"))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
