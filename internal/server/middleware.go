package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"chat-agent/internal/common/logger"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with an id, echoing one supplied by the
// caller.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request with method, path, and duration.
func requestLogger(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("request handled", map[string]interface{}{
				"method":     r.Method,
				"path":       r.URL.Path,
				"requestId":  w.Header().Get(requestIDHeader),
				"durationMs": time.Since(start).Milliseconds(),
			})
		})
	}
}
