// Package prometheus exposes the engine's operational metrics.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector registers and records every engine metric on its own registry,
// so tests can construct collectors without double-registration panics.
type Collector struct {
	registry *prometheus.Registry

	validationsTotal    *prometheus.CounterVec
	validationDuration  prometheus.Histogram
	generationsTotal    *prometheus.CounterVec
	generationDuration  prometheus.Histogram
	anchorsTotal        *prometheus.CounterVec
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewCollector builds a collector with all engine metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	c := &Collector{
		registry: registry,
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eudr",
			Name:      "geolocation_validations_total",
			Help:      "Geolocation validation outcomes.",
		}, []string{"valid"}),
		validationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eudr",
			Name:      "geolocation_validation_duration_seconds",
			Help:      "Latency of geolocation validation.",
			Buckets:   prometheus.DefBuckets,
		}),
		generationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eudr",
			Name:      "statement_generations_total",
			Help:      "Generated statements by assessed risk level.",
		}, []string{"risk_level"}),
		generationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "eudr",
			Name:      "statement_generation_duration_seconds",
			Help:      "Latency of the full statement generation pipeline.",
			Buckets:   prometheus.DefBuckets,
		}),
		anchorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eudr",
			Name:      "ledger_anchors_total",
			Help:      "Ledger anchoring attempts by outcome.",
		}, []string{"status"}),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eudr",
			Name:      "http_requests_total",
			Help:      "HTTP requests by route, method, and status class.",
		}, []string{"route", "method", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eudr",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route"}),
	}

	registry.MustRegister(
		c.validationsTotal, c.validationDuration,
		c.generationsTotal, c.generationDuration,
		c.anchorsTotal,
		c.httpRequestsTotal, c.httpRequestDuration,
	)
	return c
}

// ObserveValidation records one validation outcome.
func (c *Collector) ObserveValidation(valid bool, duration time.Duration) {
	label := "false"
	if valid {
		label = "true"
	}
	c.validationsTotal.WithLabelValues(label).Inc()
	c.validationDuration.Observe(duration.Seconds())
}

// ObserveGeneration records one completed statement generation.
func (c *Collector) ObserveGeneration(riskLevel string, duration time.Duration) {
	c.generationsTotal.WithLabelValues(riskLevel).Inc()
	c.generationDuration.Observe(duration.Seconds())
}

// ObserveAnchor records one anchoring attempt.
func (c *Collector) ObserveAnchor(success bool) {
	status := "failure"
	if success {
		status = "success"
	}
	c.anchorsTotal.WithLabelValues(status).Inc()
}

// ObserveHTTPRequest records one served request.
func (c *Collector) ObserveHTTPRequest(route, method string, statusCode int, duration time.Duration) {
	status := "2xx"
	switch {
	case statusCode >= 500:
		status = "5xx"
	case statusCode >= 400:
		status = "4xx"
	case statusCode >= 300:
		status = "3xx"
	}
	c.httpRequestsTotal.WithLabelValues(route, method, status).Inc()
	c.httpRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler serves the /metrics scrape endpoint for this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
