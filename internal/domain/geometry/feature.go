// Package geometry holds the canonical plot-geometry model of the compliance
// engine: GeoJSON-shaped features normalized into a single collection form,
// pure geometric functions over them, and the deterministic content digest
// used for ledger anchoring.
package geometry

import (
	"bytes"
	"encoding/json"
)

// Geometry type names accepted by the engine. Other GeoJSON types survive
// normalization untouched and are rejected by the validator with a
// per-feature error.
const (
	TypePoint             = "Point"
	TypePolygon           = "Polygon"
	TypeFeature           = "Feature"
	TypeFeatureCollection = "FeatureCollection"
)

// Position is a single [longitude, latitude] coordinate pair.
type Position [2]float64

// Lon returns the longitude component.
func (p Position) Lon() float64 { return p[0] }

// Lat returns the latitude component.
func (p Position) Lat() float64 { return p[1] }

// Ring is a closed sequence of positions forming one polygon ring.
type Ring []Position

// Geometry is one GeoJSON geometry. Coordinates are kept in their canonical
// serialized form (see canonicalCoordinates) and decoded on demand per the
// declared type, so unknown types pass through normalization intact for the
// validator to report.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates,omitempty"`
}

// PointPosition decodes the coordinates as a Point position. Components
// beyond longitude and latitude (e.g. elevation) are ignored.
func (g *Geometry) PointPosition() (Position, bool) {
	var coords []float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil || len(coords) < 2 {
		return Position{}, false
	}
	return Position{coords[0], coords[1]}, true
}

// PolygonRings decodes the coordinates as polygon rings. The first ring is
// the outer boundary; any further rings are holes.
func (g *Geometry) PolygonRings() ([]Ring, bool) {
	var coords [][][]float64
	if err := json.Unmarshal(g.Coordinates, &coords); err != nil || len(coords) == 0 {
		return nil, false
	}
	rings := make([]Ring, 0, len(coords))
	for _, rawRing := range coords {
		ring := make(Ring, 0, len(rawRing))
		for _, pos := range rawRing {
			if len(pos) < 2 {
				return nil, false
			}
			ring = append(ring, Position{pos[0], pos[1]})
		}
		rings = append(rings, ring)
	}
	return rings, true
}

// Positions returns every coordinate pair in the geometry, in input order.
// Unsupported or undecodable geometries yield nil.
func (g *Geometry) Positions() []Position {
	switch g.Type {
	case TypePoint:
		if p, ok := g.PointPosition(); ok {
			return []Position{p}
		}
	case TypePolygon:
		if rings, ok := g.PolygonRings(); ok {
			var out []Position
			for _, ring := range rings {
				out = append(out, ring...)
			}
			return out
		}
	}
	return nil
}

// Properties carries the recognised per-plot attributes. Unknown properties
// are dropped during normalization; the canonical form is what gets hashed
// and anchored.
type Properties struct {
	PlotID     string   `json:"plot_id,omitempty"`
	FarmID     string   `json:"farm_id,omitempty"`
	AreaHa     *float64 `json:"area_ha,omitempty"`
	FarmerName string   `json:"farmer_name,omitempty"`
}

// Feature is one plot: a geometry plus its properties.
type Feature struct {
	Type       string     `json:"type"`
	Geometry   *Geometry  `json:"geometry"`
	Properties Properties `json:"properties"`
}

// Collection is the canonical, ordered feature collection every input shape
// normalizes into. Insertion order is significant: the feature index appears
// in all validation diagnostics.
type Collection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// CanonicalJSON returns the byte form over which the content digest is
// computed: encoding/json marshalling of the typed collection, which fixes
// key order (struct field order) and uses the shortest float representation
// that round-trips. Independent verifiers reproduce it by normalizing the
// same input and marshalling with any spec-compliant JSON encoder using
// shortest-float formatting.
func (c *Collection) CanonicalJSON() ([]byte, error) {
	return json.Marshal(c)
}

// canonicalCoordinates re-encodes raw coordinates into their canonical byte
// form: decoded to floats and re-marshalled for the supported types, so
// incidental whitespace and number spellings ("7.10" vs "7.1") cannot change
// the digest. Undecodable or unsupported coordinates are compacted verbatim.
func canonicalCoordinates(geomType string, raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	switch geomType {
	case TypePoint:
		var v []float64
		if err := json.Unmarshal(raw, &v); err == nil {
			if b, err := json.Marshal(v); err == nil {
				return b
			}
		}
	case TypePolygon:
		var v [][][]float64
		if err := json.Unmarshal(raw, &v); err == nil {
			if b, err := json.Marshal(v); err == nil {
				return b
			}
		}
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err == nil {
		return buf.Bytes()
	}
	return raw
}
