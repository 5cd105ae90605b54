// Package compliance implements the EUDR compliance engine proper: the
// geometry validator, the policy-driven risk assessor, the due diligence
// statement assembler, and the orchestrating service that connects them to
// persistence, storage, and messaging collaborators.
package compliance

import (
	"fmt"
	"math"

	"github.com/agroledger/eudr-engine/internal/domain/geometry"
)

// Validator thresholds. EUDR article 9 requires six-decimal coordinates and
// polygon geometry for any plot of four hectares or more.
const (
	DefaultMinPrecision  = 6
	DefaultLargePlotHa   = 4.0
	DefaultMaxInputBytes = 5 << 20
)

// ValidatorConfig carries the tunable rule thresholds. Zero values fall back
// to the regulation defaults.
type ValidatorConfig struct {
	// MinPrecision is the minimum decimal places required of every
	// coordinate component.
	MinPrecision int `mapstructure:"min_precision"`

	// LargePlotHa is the inclusive area threshold above which a plot must be
	// described by Polygon geometry rather than a Point.
	LargePlotHa float64 `mapstructure:"large_plot_ha"`
}

// FeatureReport is the per-feature slice of a validation report.
type FeatureReport struct {
	Index        int      `json:"index"`
	GeometryType string   `json:"geometry_type,omitempty"`
	AreaHa       *float64 `json:"area_ha,omitempty"`
	PlotID       string   `json:"plot_id,omitempty"`
	Precision    int      `json:"precision"`
}

// Report is the complete outcome of validating one collection. Valid is true
// iff no errors accumulated; warnings never affect validity.
type Report struct {
	Valid                bool            `json:"valid"`
	Errors               []string        `json:"errors"`
	Warnings             []string        `json:"warnings"`
	Features             []FeatureReport `json:"per_feature"`
	TotalAreaHa          float64         `json:"total_area_ha"`
	PolygonRequiredCount int             `json:"polygon_required_count"`
}

// Validator applies the EUDR structural and numeric rules to a normalized
// collection. It never returns an error value: all findings are captured in
// the report so callers get full diagnostics even for badly broken input.
type Validator struct {
	cfg ValidatorConfig
}

// NewValidator constructs a Validator, substituting regulation defaults for
// unset thresholds.
func NewValidator(cfg ValidatorConfig) *Validator {
	if cfg.MinPrecision <= 0 {
		cfg.MinPrecision = DefaultMinPrecision
	}
	if cfg.LargePlotHa <= 0 {
		cfg.LargePlotHa = DefaultLargePlotHa
	}
	return &Validator{cfg: cfg}
}

// Validate checks every feature of the collection against the plot rules and
// assembles the report. Feature indices in all diagnostics refer to the
// collection's insertion order.
func (v *Validator) Validate(c *geometry.Collection) *Report {
	r := &Report{
		Errors:   []string{},
		Warnings: []string{},
		Features: []FeatureReport{},
	}

	if c == nil || len(c.Features) == 0 {
		r.Errors = append(r.Errors, "geolocation contains no features")
		return r
	}

	seenPlotIDs := make(map[string]int)
	totalArea := 0.0

	for i := range c.Features {
		f := &c.Features[i]
		fr := FeatureReport{Index: i, PlotID: f.Properties.PlotID}

		v.checkPlotID(r, i, f.Properties.PlotID, seenPlotIDs)

		if v.checkGeometry(r, &fr, f, &totalArea) {
			r.Features = append(r.Features, fr)
			continue
		}
		r.Features = append(r.Features, fr)
	}

	r.TotalAreaHa = math.Round(totalArea*1000) / 1000
	r.Valid = len(r.Errors) == 0
	return r
}

// checkGeometry runs the geometry-dependent rules for feature i and reports
// whether the feature was excluded from further geometric checks.
func (v *Validator) checkGeometry(r *Report, fr *FeatureReport, f *geometry.Feature, totalArea *float64) bool {
	i := fr.Index

	if f.Geometry == nil || f.Geometry.Type == "" {
		r.Errors = append(r.Errors, fmt.Sprintf("feature %d: missing geometry", i))
		return true
	}
	fr.GeometryType = f.Geometry.Type

	if f.Geometry.Type != geometry.TypePoint && f.Geometry.Type != geometry.TypePolygon {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"feature %d: unsupported geometry type %q (must be Point or Polygon)", i, f.Geometry.Type))
		return true
	}

	positions := f.Geometry.Positions()
	if len(positions) == 0 {
		r.Errors = append(r.Errors, fmt.Sprintf("feature %d: invalid %s coordinates", i, f.Geometry.Type))
		return true
	}

	v.checkCoordinateRange(r, i, positions)

	fr.Precision = geometry.MinDecimalPrecision(f.Geometry)
	if fr.Precision < v.cfg.MinPrecision {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"feature %d: coordinate precision of %d decimal places is below the required %d",
			i, fr.Precision, v.cfg.MinPrecision))
	}

	switch f.Geometry.Type {
	case geometry.TypePolygon:
		v.checkPolygonArea(r, fr, f, totalArea)
	case geometry.TypePoint:
		v.checkPointSize(r, fr, f)
	}
	return false
}

// checkCoordinateRange rejects coordinates outside WGS 84 bounds.
func (v *Validator) checkCoordinateRange(r *Report, i int, positions []geometry.Position) {
	for _, p := range positions {
		if p.Lon() < -180 || p.Lon() > 180 || p.Lat() < -90 || p.Lat() > 90 {
			r.Errors = append(r.Errors, fmt.Sprintf(
				"feature %d: coordinate [%v, %v] out of range (longitude within [-180,180], latitude within [-90,90])",
				i, p.Lon(), p.Lat()))
			return
		}
	}
}

// checkPolygonArea computes the plot area and accumulates it into the
// collection total. A failed area calculation is a warning, never an error:
// validity must not hinge on a derived metric.
func (v *Validator) checkPolygonArea(r *Report, fr *FeatureReport, f *geometry.Feature, totalArea *float64) {
	rings, ok := f.Geometry.PolygonRings()
	if !ok {
		r.Warnings = append(r.Warnings, fmt.Sprintf("feature %d: area calculation failed: undecodable rings", fr.Index))
		return
	}
	area, err := geometry.PolygonAreaHectares(rings)
	if err != nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf("feature %d: area calculation failed: %v", fr.Index, err))
		return
	}
	rounded := math.Round(area*1000) / 1000
	fr.AreaHa = &rounded
	*totalArea += area
}

// checkPointSize enforces the polygon-geometry mandate for large plots
// declared as points. The threshold is inclusive: a declared area of exactly
// LargePlotHa fails.
func (v *Validator) checkPointSize(r *Report, fr *FeatureReport, f *geometry.Feature) {
	declared := f.Properties.AreaHa
	if declared == nil {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"feature %d: cannot assess plot size without Polygon geometry or a declared area_ha", fr.Index))
		return
	}
	fr.AreaHa = declared
	if *declared >= v.cfg.LargePlotHa {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"feature %d: declared area %.3f ha meets the %.1f ha threshold and must use Polygon geometry",
			fr.Index, *declared, v.cfg.LargePlotHa))
		r.PolygonRequiredCount++
	}
}

// checkPlotID enforces plot_id uniqueness across the collection. A missing
// plot_id is only a warning: traceability identifiers are recommended, not
// mandatory.
func (v *Validator) checkPlotID(r *Report, i int, plotID string, seen map[string]int) {
	if plotID == "" {
		r.Warnings = append(r.Warnings, fmt.Sprintf("feature %d: missing plot_id (traceability recommended)", i))
		return
	}
	if first, dup := seen[plotID]; dup {
		r.Errors = append(r.Errors, fmt.Sprintf(
			"feature %d: duplicate plot_id %q (already used by feature %d)", i, plotID, first))
		return
	}
	seen[plotID] = i
}
