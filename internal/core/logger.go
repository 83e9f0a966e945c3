package core

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tesh254/chatmd/internal/logger"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	bodySize   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(data []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(data)
	rw.bodySize += n
	return n, err
}

// Flush keeps streamed MCP responses flowing through the wrapper.
func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func loggingHandler(log *logger.Logger, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		log.Info("incoming request",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"from", r.RemoteAddr,
			"user_agent", r.Header.Get("User-Agent"),
			"content_length", r.Header.Get("Content-Length"),
		)

		handler.ServeHTTP(wrapped, r)

		log.Info("response sent",
			"request_id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration", time.Since(start),
			"size", wrapped.bodySize,
		)
	})
}
