package handlers

import (
	"net/http"

	"github.com/agroledger/eudr-engine/internal/application/compliance"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
)

// ComplianceHandler serves the geolocation validation and hashing endpoints.
type ComplianceHandler struct {
	svc    *compliance.Service
	logger logging.Logger
}

// NewComplianceHandler constructs the handler.
func NewComplianceHandler(svc *compliance.Service, log logging.Logger) *ComplianceHandler {
	if log == nil {
		log = logging.NewNop()
	}
	return &ComplianceHandler{svc: svc, logger: log.Named("compliance_handler")}
}

// ValidateGeolocation handles POST /api/v1/geolocation/validate. The body is
// the raw geolocation payload; the response is the full validation report.
// Rule violations are a 200 with valid=false, not an HTTP error.
func (h *ComplianceHandler) ValidateGeolocation(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	report, err := h.svc.ValidateGeolocation(r.Context(), body)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HashResponse carries a canonical content hash.
type HashResponse struct {
	GeolocationHash string `json:"geolocation_hash"`
}

// HashGeolocation handles POST /api/v1/geolocation/hash: it returns the
// canonical content hash of the supplied payload without validating it.
func (h *ComplianceHandler) HashGeolocation(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeAppError(w, err)
		return
	}

	hash, err := h.svc.HashGeolocation(r.Context(), body)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, HashResponse{GeolocationHash: hash})
}
