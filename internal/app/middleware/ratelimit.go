package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"

	"artgen/internal/app/handler"
	"artgen/internal/app/logger"
)

var errRateLimited = errors.New("too many generation requests, slow down")

// RateLimit caps requests per user per window with a redis counter.
// INCR + EXPIRE; the counter key carries the route and the account id.
// A redis outage does not block the request, it only loses the limit.
func RateLimit(rdb *redis.Client, limit int, window time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.Get(r.Context(), "Middleware.RateLimit")

			userID, err := handler.ReadContextUserID(r.Context())
			if err != nil {
				// Auth runs first; an anonymous request here is a wiring bug.
				next.ServeHTTP(w, r)
				return
			}

			key := fmt.Sprintf("rate_limit:%s:%s", r.URL.Path, userID)

			count, err := rdb.Incr(r.Context(), key).Result()
			if err != nil {
				log.Warn().Err(err).Msg("Rate limit check failed, letting request through")
				next.ServeHTTP(w, r)
				return
			}

			if count == 1 {
				rdb.Expire(r.Context(), key, window)
			}

			if count > int64(limit) {
				log.Debug().Str("user_id", userID.String()).Int64("count", count).Msg("Rate limited")
				handler.WriteError(w, errRateLimited, http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
