package slogx

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/readprogress/pkg/idx"
)

// RequestIDHeader is echoed back on every response so clients can quote it.
const RequestIDHeader = "X-Request-ID"

// HTTPMiddleware logs one line per request and places a request-scoped logger
// carrying req_id into the request context.
func HTTPMiddleware(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rw := &StatusRecorder{ResponseWriter: w, Status: http.StatusOK}

			// Only well-formed IDs are trusted from clients.
			reqID := idx.New().String()
			if id, err := idx.Parse(r.Header.Get(RequestIDHeader)); err == nil {
				reqID = id.String()
			}
			w.Header().Set(RequestIDHeader, reqID)

			logger := base.With(
				"req_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"remote_addr", r.RemoteAddr,
			)
			r = r.WithContext(WithContext(r.Context(), logger))

			next.ServeHTTP(rw, r)

			logger.Info("http_request",
				"status", rw.Status,
				"bytes", rw.Bytes,
				"duration_ms", time.Since(start).Milliseconds(),
				"user_agent", r.UserAgent(),
			)
		})
	}
}

// StatusRecorder captures the status code and body size written through it.
type StatusRecorder struct {
	http.ResponseWriter

	Status int
	Bytes  int
}

func (rw *StatusRecorder) WriteHeader(code int) {
	rw.Status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *StatusRecorder) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.Bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying connection.
func (rw *StatusRecorder) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
