// Package api carries the plumbing every HTTP service shares: JSON
// responses, the error envelope, and request logging middleware.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"el-sabor/internal/logger"
)

// RequestID extracts the correlation id from a request context
func RequestID(ctx context.Context) string {
	return logger.RequestIDFromContext(ctx)
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// WriteError writes the error envelope clients expect
func WriteError(w http.ResponseWriter, statusCode int, message, requestID string) {
	WriteJSON(w, statusCode, map[string]interface{}{
		"error":      message,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"request_id": requestID,
	})
}

// AdminOnly gates a route behind the shared admin secret. An empty
// secret leaves the route open, matching the original single-password
// placeholder rather than real authentication.
func AdminOnly(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret != "" && r.Header.Get("X-Admin-Secret") != secret {
				WriteError(w, http.StatusUnauthorized, "Invalid admin secret", RequestID(r.Context()))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithLogging assigns each request an id and logs start and completion
func WithLogging(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := logger.GenerateRequestID()
			r = r.WithContext(logger.ContextWithRequestID(r.Context(), requestID))

			log.Debug("request_started", r.Method+" "+r.URL.Path, requestID, map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			})

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			log.Debug("request_completed", r.Method+" "+r.URL.Path, requestID, map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": rw.statusCode,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
