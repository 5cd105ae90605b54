package geometry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agroledger/eudr-engine/pkg/errors"
)

// squareRing returns a closed square of the given side length in degrees,
// anchored at (lon, lat).
func squareRing(lon, lat, side float64) Ring {
	return Ring{
		{lon, lat},
		{lon + side, lat},
		{lon + side, lat + side},
		{lon, lat + side},
		{lon, lat},
	}
}

func TestPolygonAreaHectares_Square(t *testing.T) {
	// 0.001° near the equator is ~111.19 m, so the square is ~1.236 ha.
	area, err := PolygonAreaHectares([]Ring{squareRing(10.0, 0.0, 0.001)})
	require.NoError(t, err)
	assert.InDelta(t, 1.236, area, 0.01)
}

func TestPolygonAreaHectares_HolesSubtract(t *testing.T) {
	outer := squareRing(10.0, 0.0, 0.001)
	hole := squareRing(10.0002, 0.0002, 0.0005)

	full, err := PolygonAreaHectares([]Ring{outer})
	require.NoError(t, err)
	holed, err := PolygonAreaHectares([]Ring{outer, hole})
	require.NoError(t, err)

	holeArea, err := PolygonAreaHectares([]Ring{hole})
	require.NoError(t, err)

	assert.InDelta(t, full-holeArea, holed, 1e-9)
	assert.Less(t, holed, full)
}

func TestPolygonAreaHectares_LatitudeScaling(t *testing.T) {
	// The same square in degrees covers less ground at 60°N (cos 60° = 0.5).
	atEquator, err := PolygonAreaHectares([]Ring{squareRing(10.0, 0.0, 0.001)})
	require.NoError(t, err)
	atSixty, err := PolygonAreaHectares([]Ring{squareRing(10.0, 60.0, 0.001)})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, atSixty/atEquator, 0.01)
}

func TestPolygonAreaHectares_Degenerate(t *testing.T) {
	cases := map[string][]Ring{
		"no rings":       {},
		"too few points": {{{1, 1}, {2, 2}, {1, 1}}},
		"unclosed ring":  {{{1, 1}, {2, 1}, {2, 2}, {1, 2}}},
		"zero area":      {{{1, 1}, {1, 1}, {1, 1}, {1, 1}}},
		"hole swallows outer": {
			squareRing(10.0, 0.0, 0.001),
			squareRing(9.999, -0.001, 0.003),
		},
	}
	for name, rings := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := PolygonAreaHectares(rings)
			require.Error(t, err)
			assert.True(t, errors.IsCode(err, errors.ErrCodeGeoAreaFailed))
		})
	}
}

func pointGeometry(t *testing.T, lon, lat string) *Geometry {
	t.Helper()
	return &Geometry{
		Type:        TypePoint,
		Coordinates: json.RawMessage(`[` + lon + `,` + lat + `]`),
	}
}

func TestMinDecimalPrecision(t *testing.T) {
	// The minimum across all components decides: [3.123456, 7.1] → 1.
	assert.Equal(t, 1, MinDecimalPrecision(pointGeometry(t, "3.123456", "7.1")))
	assert.Equal(t, 6, MinDecimalPrecision(pointGeometry(t, "3.123456", "7.654321")))
	assert.Equal(t, 0, MinDecimalPrecision(pointGeometry(t, "3", "7.123456")))
}

func TestMinDecimalPrecision_Polygon(t *testing.T) {
	g := &Geometry{
		Type:        TypePolygon,
		Coordinates: json.RawMessage(`[[[10.123456,0.123456],[10.124456,0.123456],[10.124,0.124456],[10.123456,0.123456]]]`),
	}
	assert.Equal(t, 3, MinDecimalPrecision(g))
}

func TestMinDecimalPrecision_NoCoordinates(t *testing.T) {
	assert.Equal(t, 0, MinDecimalPrecision(&Geometry{Type: TypePoint}))
	assert.Equal(t, 0, MinDecimalPrecision(&Geometry{Type: "LineString", Coordinates: json.RawMessage(`[[1,2],[3,4]]`)}))
}

func TestCentroid(t *testing.T) {
	c := &Collection{
		Type: TypeFeatureCollection,
		Features: []Feature{
			{Type: TypeFeature, Geometry: pointGeometry(t, "10", "20")},
			{Type: TypeFeature, Geometry: &Geometry{
				Type: TypePolygon,
				// Square around (30, 40); closing vertex must not skew the mean.
				Coordinates: json.RawMessage(`[[[29,39],[31,39],[31,41],[29,41],[29,39]]]`),
			}},
		},
	}
	p := Centroid(c)
	assert.InDelta(t, 20.0, p.Lon(), 1e-9)
	assert.InDelta(t, 30.0, p.Lat(), 1e-9)
}

func TestCentroid_EmptyCollection(t *testing.T) {
	assert.Equal(t, Position{}, Centroid(&Collection{Type: TypeFeatureCollection}))
}
