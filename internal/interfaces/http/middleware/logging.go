// Package middleware provides the HTTP middleware of the compliance API.
package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
)

// LoggingMiddleware emits one structured access log line per request.
type LoggingMiddleware struct {
	logger logging.Logger
}

// NewLoggingMiddleware constructs the middleware.
func NewLoggingMiddleware(log logging.Logger) *LoggingMiddleware {
	if log == nil {
		log = logging.NewNop()
	}
	return &LoggingMiddleware{logger: log.Named("http")}
}

// Handler wraps next with access logging.
func (m *LoggingMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		m.logger.Info("request",
			logging.String("method", r.Method),
			logging.String("path", r.URL.Path),
			logging.Int("status", ww.Status()),
			logging.Int("bytes", ww.BytesWritten()),
			logging.Duration("duration", time.Since(start)),
			logging.String("request_id", chimw.GetReqID(r.Context())),
			logging.String("remote", r.RemoteAddr))
	})
}
