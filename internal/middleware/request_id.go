package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// RequestID tags every request with an X-Request-ID, minting one when the
// client didn't send its own. The ID is echoed on the response so support
// tickets can be matched against log lines.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestID)
		r.Header.Set("X-Request-ID", requestID)

		next.ServeHTTP(w, r)
	})
}

// Timeout caps request handling time. WebSocket routes must be mounted
// outside this middleware, http.TimeoutHandler breaks hijacking.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.TimeoutHandler(next, timeout, "Request timeout")
	}
}
