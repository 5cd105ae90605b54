package compliance

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/agroledger/eudr-engine/internal/domain/geometry"
	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/internal/infrastructure/monitoring/logging"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

// digestFn is a seam for tests asserting that hashing is skipped on invalid
// geolocation.
var digestFn = geometry.Digest

// AssemblerConfig tunes input acceptance for the assembly pipeline.
type AssemblerConfig struct {
	// MaxInputBytes caps raw geolocation payload size. Zero means the
	// default of 5 MiB.
	MaxInputBytes int64 `mapstructure:"max_input_bytes"`
}

// GenerateRequest carries everything the engine needs to produce one
// statement for one batch.
type GenerateRequest struct {
	TokenReference string                     `json:"token_reference,omitempty"`
	Batch          statement.BatchDescriptors `json:"batch"`
	Geolocation    json.RawMessage            `json:"geolocation"`
	Facts          statement.ComplianceFacts  `json:"compliance_facts"`
}

// Assembler runs the statement generation pipeline: normalize, validate,
// hash, assess, assemble. It is pure with respect to the outside world; the
// Service layers persistence and eventing on top.
type Assembler struct {
	validator *Validator
	assessor  *Assessor
	maxBytes  int64
	now       func() time.Time
	logger    logging.Logger
}

// NewAssembler wires a validator and assessor into an assembly pipeline.
func NewAssembler(validator *Validator, assessor *Assessor, cfg AssemblerConfig, logger logging.Logger) *Assembler {
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = DefaultMaxInputBytes
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Assembler{
		validator: validator,
		assessor:  assessor,
		maxBytes:  cfg.MaxInputBytes,
		now:       time.Now,
		logger:    logger.Named("assembler"),
	}
}

// ValidateGeolocation normalizes and validates a raw geolocation payload.
// Malformed input fails with an error; rule violations are reported inside
// the returned report with Valid=false.
func (a *Assembler) ValidateGeolocation(raw json.RawMessage) (*Report, error) {
	coll, err := a.normalize(raw)
	if err != nil {
		return nil, err
	}
	return a.validator.Validate(coll), nil
}

// HashGeolocation normalizes a raw payload and returns its canonical content
// hash. Rule violations do not block hashing; only malformed input does.
func (a *Assembler) HashGeolocation(raw json.RawMessage) (string, error) {
	coll, err := a.normalize(raw)
	if err != nil {
		return "", err
	}
	return digestFn(coll)
}

// Generate runs the full pipeline and returns a complete statement. Rule
// violations abort generation before any hash or risk computation happens;
// the validation errors travel in the returned AppError's detail.
func (a *Assembler) Generate(req GenerateRequest) (*statement.DueDiligenceStatement, error) {
	coll, err := a.normalize(req.Geolocation)
	if err != nil {
		return nil, err
	}

	report := a.validator.Validate(coll)
	if !report.Valid {
		a.logger.Warn("statement generation rejected",
			logging.String("batch_id", req.Batch.BatchID),
			logging.Int("error_count", len(report.Errors)))
		return nil, errors.GeolocationInvalid("geolocation failed validation").
			WithDetail(strings.Join(report.Errors, "; "))
	}

	hash, err := digestFn(coll)
	if err != nil {
		return nil, err
	}

	risk := a.assessor.Assess(report, req.Facts)
	now := a.now().UTC()

	dds := &statement.DueDiligenceStatement{
		ReferenceNumber: statement.NewReferenceNumber(now),
		SchemaVersion:   statement.SchemaVersion,
		TokenReference:  req.TokenReference,
		Batch:           req.Batch,
		Product: statement.ProductDescriptor{
			HSCode:        req.Facts.HSCode,
			CommodityName: req.Facts.CommodityName,
			QuantityKg:    req.Facts.QuantityKg,
		},
		Geolocation:       coll,
		GeolocationHash:   hash,
		TotalAreaHa:       report.TotalAreaHa,
		PlotCount:         len(coll.Features),
		Centroid:          geometry.Centroid(coll),
		DeforestationFree: req.Facts.Deforestation != nil && req.Facts.Deforestation.Status,
		LegalityVerified:  len(req.Facts.LegalityDocuments) > 0,
		Risk:              risk,
		DeclaredAt:        now,
		Attestation:       statement.Attestation,
		VerificationToken: statement.NewVerificationToken(),
	}

	a.logger.Info("statement assembled",
		logging.String("reference", dds.ReferenceNumber),
		logging.String("risk_level", risk.Level.String()),
		logging.Int("plot_count", dds.PlotCount))
	return dds, nil
}

// normalize enforces the payload size cap and delegates to the geometry
// normalizer.
func (a *Assembler) normalize(raw json.RawMessage) (*geometry.Collection, error) {
	if len(raw) == 0 {
		return nil, errors.MalformedGeometry("geolocation payload is empty")
	}
	if int64(len(raw)) > a.maxBytes {
		return nil, errors.InputTooLarge(fmt.Sprintf(
			"geolocation payload of %d bytes exceeds the %d byte limit", len(raw), a.maxBytes))
	}
	return geometry.Normalize(raw)
}
