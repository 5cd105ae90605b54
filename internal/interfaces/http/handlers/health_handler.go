package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/types/common"
)

// DependencyCheck probes one backing service.
type DependencyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	checks []DependencyCheck
	logger logging.Logger
}

// NewHealthHandler constructs the handler over the given dependency probes.
func NewHealthHandler(checks []DependencyCheck, log logging.Logger) *HealthHandler {
	if log == nil {
		log = logging.NewNop()
	}
	return &HealthHandler{checks: checks, logger: log.Named("health")}
}

// Liveness handles GET /healthz. The process being able to answer is the
// whole check.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]common.HealthStatus{"status": common.HealthUp})
}

// ReadinessResponse reports per-dependency health.
type ReadinessResponse struct {
	Status     common.HealthStatus      `json:"status"`
	Components []common.ComponentHealth `json:"components"`
}

// Readiness handles GET /readyz: every dependency is probed with a short
// timeout and the worst result decides the status code.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := ReadinessResponse{Status: common.HealthUp}
	for _, c := range h.checks {
		start := time.Now()
		component := common.ComponentHealth{Name: c.Name, Status: common.HealthUp}
		if err := c.Check(ctx); err != nil {
			component.Status = common.HealthDown
			component.Message = err.Error()
			resp.Status = common.HealthDown
			h.logger.Warn("dependency unhealthy",
				logging.String("component", c.Name), logging.Err(err))
		}
		component.Latency = time.Since(start)
		resp.Components = append(resp.Components, component)
	}

	status := http.StatusOK
	if resp.Status == common.HealthDown {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
