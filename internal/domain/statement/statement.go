// Package statement holds the due diligence statement domain model: the
// immutable, versioned record the compliance engine assembles per batch, the
// externally supplied compliance facts it consumes, and the risk
// classification types.
package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/agroledger/eudr-engine/internal/domain/geometry"
)

// SchemaVersion identifies the statement record layout. Bump on any change
// to the serialized field set, since persisted statements are immutable.
const SchemaVersion = "1.0"

// Attestation is the declaration text embedded in every statement.
const Attestation = "The operator hereby confirms that due diligence in accordance with " +
	"Regulation (EU) 2023/1115 was exercised for the referenced batch and that the " +
	"assessed risk level is recorded truthfully."

// DeforestationCheck is an externally performed deforestation-free
// verification for the sourcing area.
type DeforestationCheck struct {
	// Status is true only when the check confirmed the area deforestation-free.
	Status      bool   `json:"status"`
	CheckedDate string `json:"checked_date,omitempty"`
	Source      string `json:"source,omitempty"`
}

// LegalityDocument references one document evidencing legal production
// (land tenure, harvest permit, export licence).
type LegalityDocument struct {
	Type          string `json:"type"`
	Issuer        string `json:"issuer,omitempty"`
	IssueDate     string `json:"issue_date,omitempty"`
	ReferenceHash string `json:"reference_hash,omitempty"`
}

// ComplianceFacts are the externally supplied inputs to risk assessment.
// The engine never derives these; the caller fetches them from its own
// sources and passes them in.
type ComplianceFacts struct {
	Deforestation     *DeforestationCheck `json:"deforestation_check,omitempty"`
	LegalityDocuments []LegalityDocument  `json:"legality_documents,omitempty"`
	HSCode            string              `json:"hs_code,omitempty"`
	CommodityName     string              `json:"commodity_name,omitempty"`
	QuantityKg        float64             `json:"quantity_kg,omitempty"`
}

// BatchDescriptors identify the physical batch and the operator declaring it.
type BatchDescriptors struct {
	BatchID             string `json:"batch_id,omitempty"`
	OperatorName        string `json:"operator_name,omitempty"`
	OperatorID          string `json:"operator_id,omitempty"`
	CountryOfProduction string `json:"country_of_production,omitempty"`
}

// ProductDescriptor is the commodity slice of a statement.
type ProductDescriptor struct {
	HSCode        string  `json:"hs_code,omitempty"`
	CommodityName string  `json:"commodity_name,omitempty"`
	QuantityKg    float64 `json:"quantity_kg,omitempty"`
}

// DueDiligenceStatement is the complete, self-contained compliance record.
// It is constructed fresh on each generation request and never mutated;
// persistence is its only exit point.
type DueDiligenceStatement struct {
	ReferenceNumber   string               `json:"reference_number"`
	SchemaVersion     string               `json:"schema_version"`
	TokenReference    string               `json:"token_reference,omitempty"`
	Batch             BatchDescriptors     `json:"batch"`
	Product           ProductDescriptor    `json:"product"`
	Geolocation       *geometry.Collection `json:"geolocation"`
	GeolocationHash   string               `json:"geolocation_hash"`
	TotalAreaHa       float64              `json:"total_area_ha"`
	PlotCount         int                  `json:"plot_count"`
	Centroid          geometry.Position    `json:"centroid"`
	DeforestationFree bool                 `json:"deforestation_free"`
	LegalityVerified  bool                 `json:"legality_verified"`
	Risk              RiskAssessment       `json:"risk_assessment"`
	DeclaredAt        time.Time            `json:"declared_at"`
	Attestation       string               `json:"attestation"`
	VerificationToken string               `json:"verification_token"`
}

// NewReferenceNumber generates a fresh statement reference of the form
// EUDR-DDS-YYYYMMDD-xxxxxxxx, unique per generation request.
func NewReferenceNumber(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("EUDR-DDS-%s-%s", now.UTC().Format("20060102"), suffix)
}

// NewVerificationToken generates the opaque token handed to downstream
// verifiers of a statement.
func NewVerificationToken() string {
	return uuid.New().String()
}
