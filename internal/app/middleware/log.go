package middleware

import (
	"net/http"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog/hlog"

	"artgen/internal/app/logger"
)

// Log attaches a request-scoped logger with a request id and emits one
// access log line per request.
func Log(l logger.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		h := hlog.NewHandler(l.Logger)

		access := hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
			hlog.FromRequest(r).Info().
				Str("method", r.Method).
				Str("url", r.URL.String()).
				Int("status", status).
				Int("size", size).
				Dur("duration", duration).
				Msg("Request")
		})

		requestID := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id := r.Header.Get("X-Request-Id")
				if id == "" {
					id = xid.New().String()
				}
				ctx := hlog.FromRequest(r).With().Str("request_id", id).Logger().WithContext(r.Context())
				w.Header().Set("X-Request-Id", id)
				next.ServeHTTP(w, r.WithContext(ctx))
			})
		}

		return h(requestID(access(next)))
	}
}
