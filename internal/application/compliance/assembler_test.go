package compliance

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroledger/eudr-engine/internal/domain/geometry"
	"github.com/agroledger/eudr-engine/internal/domain/statement"
	"github.com/agroledger/eudr-engine/pkg/errors"
)

func newTestAssembler(cfg AssemblerConfig) *Assembler {
	return NewAssembler(NewValidator(ValidatorConfig{}), NewAssessor(), cfg, nil)
}

func validRequest() GenerateRequest {
	return GenerateRequest{
		TokenReference: "token-42",
		Batch: statement.BatchDescriptors{
			BatchID:             "BATCH-7",
			OperatorName:        "Fazenda Aurora Ltda",
			CountryOfProduction: "BR",
		},
		Geolocation: json.RawMessage(validPolygonJSON),
		Facts:       fullFacts(),
	}
}

func TestGenerate_CompleteStatement(t *testing.T) {
	dds, err := newTestAssembler(AssemblerConfig{}).Generate(validRequest())
	require.NoError(t, err)

	assert.Regexp(t, `^EUDR-DDS-\d{8}-[0-9a-f]{8}$`, dds.ReferenceNumber)
	assert.Equal(t, statement.SchemaVersion, dds.SchemaVersion)
	assert.Equal(t, "token-42", dds.TokenReference)
	assert.Equal(t, "BATCH-7", dds.Batch.BatchID)
	assert.Regexp(t, `^0x[0-9a-f]{64}$`, dds.GeolocationHash)
	assert.Equal(t, 1, dds.PlotCount)
	assert.InDelta(t, 1.236, dds.TotalAreaHa, 0.01)
	assert.InDelta(t, -47.122956, dds.Centroid.Lon(), 1e-6)
	assert.True(t, dds.DeforestationFree)
	assert.True(t, dds.LegalityVerified)
	assert.Equal(t, statement.RiskNegligible, dds.Risk.Level)
	assert.Empty(t, dds.Risk.Mitigations)
	assert.Equal(t, statement.Attestation, dds.Attestation)
	assert.NotEmpty(t, dds.VerificationToken)
	assert.False(t, dds.DeclaredAt.IsZero())
}

func TestGenerate_InvalidGeolocationFailsBeforeHashing(t *testing.T) {
	digestCalls := 0
	orig := digestFn
	digestFn = func(c *geometry.Collection) (string, error) {
		digestCalls++
		return orig(c)
	}
	defer func() { digestFn = orig }()

	req := validRequest()
	req.Geolocation = json.RawMessage(`{"type":"Point","coordinates":[9.1,4.1]}`)

	dds, err := newTestAssembler(AssemblerConfig{}).Generate(req)
	require.Error(t, err)
	assert.Nil(t, dds)
	assert.Equal(t, errors.ErrCodeGeoInvalid, errors.GetCode(err))
	assert.Contains(t, err.(*errors.AppError).Detail, "precision")
	assert.Zero(t, digestCalls)
}

func TestGenerate_MalformedGeolocation(t *testing.T) {
	req := validRequest()
	req.Geolocation = json.RawMessage(`{"type":"Point"`)

	_, err := newTestAssembler(AssemblerConfig{}).Generate(req)
	assert.Equal(t, errors.ErrCodeGeoMalformed, errors.GetCode(err))
}

func TestGenerate_EmptyPayload(t *testing.T) {
	req := validRequest()
	req.Geolocation = nil

	_, err := newTestAssembler(AssemblerConfig{}).Generate(req)
	assert.Equal(t, errors.ErrCodeGeoMalformed, errors.GetCode(err))
}

func TestGenerate_PayloadTooLarge(t *testing.T) {
	req := validRequest()

	_, err := newTestAssembler(AssemblerConfig{MaxInputBytes: 16}).Generate(req)
	assert.Equal(t, errors.ErrCodeGeoInputTooLarge, errors.GetCode(err))
}

func TestGenerate_RiskEscalatesWithMissingFacts(t *testing.T) {
	req := validRequest()
	req.Facts = statement.ComplianceFacts{}

	dds, err := newTestAssembler(AssemblerConfig{}).Generate(req)
	require.NoError(t, err)
	assert.Equal(t, statement.RiskNonNegligible, dds.Risk.Level)
	assert.False(t, dds.DeforestationFree)
	assert.False(t, dds.LegalityVerified)
	assert.Contains(t, dds.Risk.Mitigations, "verify deforestation-free status")
}

func TestHashGeolocation_ShapeIndependent(t *testing.T) {
	a := newTestAssembler(AssemblerConfig{})

	bare := `{"type":"Point","coordinates":[9.123456,4.123456]}`
	wrapped := `{"type":"Feature","geometry":{"type":"Point","coordinates":[9.123456,4.123456]},"properties":{}}`

	h1, err := a.HashGeolocation(json.RawMessage(bare))
	require.NoError(t, err)
	h2, err := a.HashGeolocation(json.RawMessage(wrapped))
	require.NoError(t, err)
	assert.Equal(t, h1, h2)
}

func TestValidateGeolocation_RuleViolationsAreNotErrors(t *testing.T) {
	a := newTestAssembler(AssemblerConfig{})

	report, err := a.ValidateGeolocation(json.RawMessage(`{"type":"Point","coordinates":[9.1,4.1]}`))
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Errors)
}
