package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// httpObserver is the metrics surface this middleware needs. Implemented by
// the prometheus collector.
type httpObserver interface {
	ObserveHTTPRequest(route, method string, statusCode int, duration time.Duration)
}

// Metrics records one observation per served request, labeled by the chi
// route pattern rather than the raw path so cardinality stays bounded.
func Metrics(obs httpObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			obs.ObserveHTTPRequest(route, r.Method, ww.Status(), time.Since(start))
		})
	}
}
