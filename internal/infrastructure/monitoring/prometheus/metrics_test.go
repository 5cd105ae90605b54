package prometheus

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, c *Collector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	return rec.Body.String()
}

func TestCollector_RecordsEngineMetrics(t *testing.T) {
	c := NewCollector()

	c.ObserveValidation(true, 5*time.Millisecond)
	c.ObserveValidation(false, 5*time.Millisecond)
	c.ObserveGeneration("negligible", 10*time.Millisecond)
	c.ObserveAnchor(true)
	c.ObserveAnchor(false)

	body := scrape(t, c)
	assert.Contains(t, body, `eudr_geolocation_validations_total{valid="true"} 1`)
	assert.Contains(t, body, `eudr_geolocation_validations_total{valid="false"} 1`)
	assert.Contains(t, body, `eudr_statement_generations_total{risk_level="negligible"} 1`)
	assert.Contains(t, body, `eudr_ledger_anchors_total{status="success"} 1`)
	assert.Contains(t, body, `eudr_ledger_anchors_total{status="failure"} 1`)
}

func TestCollector_RecordsHTTPMetrics(t *testing.T) {
	c := NewCollector()

	c.ObserveHTTPRequest("/api/v1/statements", "POST", 201, 20*time.Millisecond)
	c.ObserveHTTPRequest("/api/v1/statements", "POST", 422, 5*time.Millisecond)

	body := scrape(t, c)
	assert.Contains(t, body, `eudr_http_requests_total{method="POST",route="/api/v1/statements",status="2xx"} 1`)
	assert.Contains(t, body, `eudr_http_requests_total{method="POST",route="/api/v1/statements",status="4xx"} 1`)
}

func TestCollector_IndependentRegistries(t *testing.T) {
	assert.NotPanics(t, func() {
		_ = NewCollector()
		_ = NewCollector()
	})
}
