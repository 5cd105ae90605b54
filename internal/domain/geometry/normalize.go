package geometry

import (
	"encoding/json"
	"fmt"

	"github.com/agroledger/eudr-engine/pkg/errors"
)

// envelope is the shape probe used to dispatch on the three accepted input
// forms. Keeping the dispatch in one place avoids ad hoc property probing
// scattered across call sites.
type envelope struct {
	Type        string          `json:"type"`
	Features    json.RawMessage `json:"features"`
	Geometry    *Geometry       `json:"geometry"`
	Properties  *Properties     `json:"properties"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Normalize accepts an arbitrary parsed JSON value and produces the canonical
// feature collection. In priority order it accepts a FeatureCollection
// (passed through), a single Feature (wrapped into a one-element collection),
// or a bare Point/Polygon geometry (wrapped as a feature with empty
// properties). Any other shape fails with ErrCodeGeoMalformed and a
// human-readable reason.
//
// No geometry validity is checked here; that is the validator's job. Unknown
// geometry types inside a collection survive so the validator can cite them
// per feature index.
func Normalize(raw json.RawMessage) (*Collection, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, errors.MalformedGeometry("geolocation input is not a JSON object").WithCause(err)
	}

	switch env.Type {
	case TypeFeatureCollection:
		return normalizeCollection(env)
	case TypeFeature:
		return normalizeFeature(env)
	case TypePoint, TypePolygon:
		return normalizeBareGeometry(env)
	case "":
		return nil, errors.MalformedGeometry(`geolocation input has no "type" member`)
	default:
		return nil, errors.MalformedGeometry(fmt.Sprintf("unrecognized GeoJSON type %q", env.Type))
	}
}

func normalizeCollection(env envelope) (*Collection, error) {
	if len(env.Features) == 0 || string(env.Features) == "null" {
		return nil, errors.MalformedGeometry(`feature collection has no "features" array`)
	}
	var features []Feature
	if err := json.Unmarshal(env.Features, &features); err != nil {
		return nil, errors.MalformedGeometry(`"features" is not an array of features`).WithCause(err)
	}
	for i := range features {
		canonicalizeFeature(&features[i])
	}
	return &Collection{Type: TypeFeatureCollection, Features: features}, nil
}

func normalizeFeature(env envelope) (*Collection, error) {
	if env.Geometry == nil {
		return nil, errors.MalformedGeometry("feature has no geometry")
	}
	f := Feature{Type: TypeFeature, Geometry: env.Geometry}
	if env.Properties != nil {
		f.Properties = *env.Properties
	}
	canonicalizeFeature(&f)
	return &Collection{Type: TypeFeatureCollection, Features: []Feature{f}}, nil
}

func normalizeBareGeometry(env envelope) (*Collection, error) {
	f := Feature{
		Type:     TypeFeature,
		Geometry: &Geometry{Type: env.Type, Coordinates: env.Coordinates},
	}
	canonicalizeFeature(&f)
	return &Collection{Type: TypeFeatureCollection, Features: []Feature{f}}, nil
}

// canonicalizeFeature fixes the feature envelope type and rewrites the
// geometry coordinates into canonical byte form so the collection hashes
// identically regardless of the input shape it arrived in.
func canonicalizeFeature(f *Feature) {
	f.Type = TypeFeature
	if f.Geometry != nil {
		f.Geometry.Coordinates = canonicalCoordinates(f.Geometry.Type, f.Geometry.Coordinates)
	}
}
