package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agroledger/eudr-engine/internal/application/compliance"
	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
)

// StatementHandler serves statement generation, preview, and retrieval.
type StatementHandler struct {
	svc    *compliance.Service
	logger logging.Logger
}

// NewStatementHandler constructs the handler.
func NewStatementHandler(svc *compliance.Service, log logging.Logger) *StatementHandler {
	if log == nil {
		log = logging.NewNop()
	}
	return &StatementHandler{svc: svc, logger: log.Named("statement_handler")}
}

// Generate handles POST /api/v1/statements: it runs the full pipeline and
// commits the statement.
func (h *StatementHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req compliance.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	result, err := h.svc.Generate(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// Preview handles POST /api/v1/statements/preview: the same pipeline with no
// persistence, storage, or events.
func (h *StatementHandler) Preview(w http.ResponseWriter, r *http.Request) {
	var req compliance.GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	dds, err := h.svc.Preview(r.Context(), req)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dds)
}

// Get handles GET /api/v1/statements/{reference}.
func (h *StatementHandler) Get(w http.ResponseWriter, r *http.Request) {
	reference := chi.URLParam(r, "reference")

	dds, err := h.svc.GetStatement(r.Context(), reference)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dds)
}

// HashListResponse carries the statements declared over one geolocation.
type HashListResponse struct {
	GeolocationHash string                             `json:"geolocation_hash"`
	Statements      []*statement.DueDiligenceStatement `json:"statements"`
}

// ListByHash handles GET /api/v1/statements/by-hash/{hash}: the duplicate
// declaration audit view over one canonical geolocation.
func (h *StatementHandler) ListByHash(w http.ResponseWriter, r *http.Request) {
	hash := chi.URLParam(r, "hash")

	statements, err := h.svc.ListByGeolocationHash(r.Context(), hash)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if statements == nil {
		statements = []*statement.DueDiligenceStatement{}
	}
	writeJSON(w, http.StatusOK, HashListResponse{GeolocationHash: hash, Statements: statements})
}
