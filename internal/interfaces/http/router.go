// Package http assembles the compliance API's route tree and server.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/internal/interfaces/http/handlers"
	"github.com/agroledger/eudr-engine/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies required
// to construct the complete HTTP route tree.
type RouterConfig struct {
	ComplianceHandler *handlers.ComplianceHandler
	StatementHandler  *handlers.StatementHandler
	TelemetryHandler  *handlers.TelemetryHandler
	HealthHandler     *handlers.HealthHandler

	// MetricsHandler serves the scrape endpoint; MetricsMiddleware records
	// per-request observations. Both optional.
	MetricsHandler    http.Handler
	MetricsMiddleware func(http.Handler) http.Handler

	Logger      logging.Logger
	MaxBodySize int64
}

// NewRouter constructs the complete HTTP route tree: global middleware,
// public health and metrics endpoints, and the /api/v1 resource groups.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Handler)
	if cfg.MetricsMiddleware != nil {
		r.Use(cfg.MetricsMiddleware)
	}
	if cfg.MaxBodySize > 0 {
		r.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}

	if cfg.HealthHandler != nil {
		r.Get("/healthz", cfg.HealthHandler.Liveness)
		r.Get("/readyz", cfg.HealthHandler.Readiness)
	}
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	r.Route("/api/v1", func(api chi.Router) {
		api.Route("/geolocation", func(geo chi.Router) {
			geo.Post("/validate", cfg.ComplianceHandler.ValidateGeolocation)
			geo.Post("/hash", cfg.ComplianceHandler.HashGeolocation)
		})

		api.Route("/statements", func(st chi.Router) {
			st.Post("/", cfg.StatementHandler.Generate)
			st.Post("/preview", cfg.StatementHandler.Preview)
			st.Get("/by-hash/{hash}", cfg.StatementHandler.ListByHash)
			st.Get("/{reference}", cfg.StatementHandler.Get)
		})

		if cfg.TelemetryHandler != nil {
			api.Route("/tokens/{tokenID}/telemetry", func(tel chi.Router) {
				tel.Post("/", cfg.TelemetryHandler.Record)
				tel.Post("/aggregate", cfg.TelemetryHandler.Aggregate)
			})
		}
	})

	return r
}
