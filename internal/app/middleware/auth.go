package middleware

import (
	"context"
	"net/http"
	"strings"

	"artgen/internal/app/apperr"
	"artgen/internal/app/handler"
	"artgen/internal/app/logger"
	"artgen/internal/app/session"
)

// Auth resolves the bearer token to an account id and stores it in the
// request context. It never touches the account store.
func Auth(sessions session.Reader) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.Get(r.Context(), "Middleware.Auth")

			reqHeader := r.Header.Get("Authorization")
			splitToken := strings.Split(reqHeader, "Bearer ")
			if len(splitToken) != 2 {
				log.Debug().Str("header", reqHeader).Msg("Invalid Authorization header")
				handler.WriteError(w, apperr.ErrUnauthorized, http.StatusUnauthorized)
				return
			}

			userID, err := sessions.Read(r.Context(), splitToken[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				handler.WriteError(w, apperr.ErrUnauthorized, http.StatusUnauthorized)
				return
			}

			log.Debug().Str("user_id", userID.String()).Msg("User authorized")
			r = r.WithContext(context.WithValue(r.Context(), handler.ContextKeyUserID{}, userID))
			next.ServeHTTP(w, r)
		})
	}
}
