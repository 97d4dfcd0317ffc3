package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"

	// inFlightTTL bounds how long a crashed request can hold the lock.
	inFlightTTL = 10 * time.Second
	// completedTTL is the replay-rejection window.
	completedTTL = 24 * time.Hour
)

// Idempotency deduplicates state-changing requests that carry an
// Idempotency-Key header. A SETNX lock rejects concurrent retries of the
// same key; once the handler returns, a completion marker rejects replays
// for a day. Only the fact of completion is stored, not the response body,
// so a replay gets 409 rather than the original response. Requests without
// the header, non-mutating methods, and a nil redis client all pass through
// untouched.
func Idempotency(redisClient *redis.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if redisClient == nil || !mutating(r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			key := r.Header.Get(idempotencyHeader)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			redisKey := fmt.Sprintf("idempotency:%s", key)

			switch _, err := redisClient.Get(ctx, redisKey).Result(); err {
			case nil:
				// key seen before, completed or still in flight
				w.Header().Set("X-Idempotency-Hit", "true")
				conflict(w, "request already processed")
				return
			case redis.Nil:
				// unseen key, fall through to the lock
			default:
				// redis down is not a reason to reject the request
				next.ServeHTTP(w, r)
				return
			}

			acquired, err := redisClient.SetNX(ctx, redisKey, "in-flight", inFlightTTL).Result()
			if err != nil || !acquired {
				conflict(w, "concurrent request with the same idempotency key")
				return
			}

			next.ServeHTTP(w, r)

			redisClient.Set(ctx, redisKey, "completed", completedTTL)
		})
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

func conflict(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusConflict)
	fmt.Fprintf(w, `{"error": %q}`, message)
}
