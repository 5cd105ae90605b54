package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agroledger/eudr-engine/internal/application/telemetry"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
)

// TelemetryHandler serves reading ingestion and aggregation per token.
type TelemetryHandler struct {
	svc    *telemetry.Service
	logger logging.Logger
}

// NewTelemetryHandler constructs the handler.
func NewTelemetryHandler(svc *telemetry.Service, log logging.Logger) *TelemetryHandler {
	if log == nil {
		log = logging.NewNop()
	}
	return &TelemetryHandler{svc: svc, logger: log.Named("telemetry_handler")}
}

// RecordRequest carries one ingestion batch.
type RecordRequest struct {
	Readings []telemetry.Reading `json:"readings"`
}

// RecordResponse acknowledges buffered readings.
type RecordResponse struct {
	TokenID string `json:"token_id"`
	Pending int    `json:"pending"`
}

// Record handles POST /api/v1/tokens/{tokenID}/telemetry.
func (h *TelemetryHandler) Record(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "tokenID")

	var req RecordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	if err := h.svc.Record(r.Context(), tokenID, req.Readings...); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, RecordResponse{
		TokenID: tokenID,
		Pending: h.svc.Pending(r.Context(), tokenID),
	})
}

// Aggregate handles POST /api/v1/tokens/{tokenID}/telemetry/aggregate: it
// flushes the token's buffer into a summary.
func (h *TelemetryHandler) Aggregate(w http.ResponseWriter, r *http.Request) {
	tokenID := chi.URLParam(r, "tokenID")

	agg, err := h.svc.Aggregate(r.Context(), tokenID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, agg)
}
