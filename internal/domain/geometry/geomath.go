package geometry

import (
	"math"
	"strconv"
	"strings"

	"github.com/agroledger/eudr-engine/pkg/errors"
)

// earthRadiusM is the mean Earth radius in meters (IUGG).
const earthRadiusM = 6371008.8

// squareMetersPerHectare converts planar square meters to hectares.
const squareMetersPerHectare = 10000.0

// PolygonAreaHectares computes the planar area of a polygon in hectares.
//
// The area is a shoelace sum over an equirectangular projection scaled at the
// outer ring's mean latitude, which is accurate to well under a percent for
// plot-sized polygons and keeps the computation pure and dependency-free.
// Interior rings (holes) subtract from the outer ring area.
//
// Degenerate input (no rings, a ring with fewer than four positions, an
// unclosed ring, or zero resulting area) fails with ErrCodeGeoAreaFailed;
// callers surface that as a warning, never as a validation failure.
func PolygonAreaHectares(rings []Ring) (float64, error) {
	if len(rings) == 0 {
		return 0, errors.AreaCalculationFailed("polygon has no rings")
	}

	outer, err := ringAreaSquareMeters(rings[0])
	if err != nil {
		return 0, err
	}

	holes := 0.0
	for _, hole := range rings[1:] {
		a, err := ringAreaSquareMeters(hole)
		if err != nil {
			return 0, err
		}
		holes += a
	}

	area := outer - holes
	if area <= 0 {
		return 0, errors.AreaCalculationFailed("polygon area is zero or negative after subtracting holes")
	}
	return area / squareMetersPerHectare, nil
}

// ringAreaSquareMeters returns the absolute shoelace area of one ring in
// square meters.
func ringAreaSquareMeters(ring Ring) (float64, error) {
	if len(ring) < 4 {
		return 0, errors.AreaCalculationFailed("ring has fewer than four positions")
	}
	if ring[0] != ring[len(ring)-1] {
		return 0, errors.AreaCalculationFailed("ring is not closed")
	}

	meanLat := 0.0
	for _, p := range ring[:len(ring)-1] {
		meanLat += p.Lat()
	}
	meanLat /= float64(len(ring) - 1)

	// Meters per degree at the ring's mean latitude.
	metersPerDegLat := earthRadiusM * math.Pi / 180
	metersPerDegLon := metersPerDegLat * math.Cos(meanLat*math.Pi/180)

	sum := 0.0
	for i := 0; i < len(ring)-1; i++ {
		x1 := ring[i].Lon() * metersPerDegLon
		y1 := ring[i].Lat() * metersPerDegLat
		x2 := ring[i+1].Lon() * metersPerDegLon
		y2 := ring[i+1].Lat() * metersPerDegLat
		sum += x1*y2 - x2*y1
	}

	area := math.Abs(sum) / 2
	if area == 0 {
		return 0, errors.AreaCalculationFailed("ring encloses zero area")
	}
	return area, nil
}

// MinDecimalPrecision returns the minimum number of decimal digits across
// every coordinate component of the geometry, using the shortest decimal
// representation that round-trips the float64 value. Integers count as zero
// decimals; a geometry with no coordinates yields zero.
func MinDecimalPrecision(g *Geometry) int {
	positions := g.Positions()
	if len(positions) == 0 {
		return 0
	}
	min := math.MaxInt
	for _, p := range positions {
		for _, v := range p {
			if d := decimalPlaces(v); d < min {
				min = d
			}
		}
	}
	return min
}

// decimalPlaces counts digits after the decimal point in the canonical
// (shortest round-tripping) decimal representation of v.
func decimalPlaces(v float64) int {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return 0
	}
	return len(s) - dot - 1
}

// Centroid returns the unweighted average position across all Point
// coordinates and Polygon outer-ring centroids in the collection, or (0,0)
// for a collection without any usable geometry.
func Centroid(c *Collection) Position {
	var lonSum, latSum float64
	count := 0

	for i := range c.Features {
		g := c.Features[i].Geometry
		if g == nil {
			continue
		}
		switch g.Type {
		case TypePoint:
			if p, ok := g.PointPosition(); ok {
				lonSum += p.Lon()
				latSum += p.Lat()
				count++
			}
		case TypePolygon:
			if rings, ok := g.PolygonRings(); ok && len(rings) > 0 {
				if p, ok := ringCentroid(rings[0]); ok {
					lonSum += p.Lon()
					latSum += p.Lat()
					count++
				}
			}
		}
	}

	if count == 0 {
		return Position{}
	}
	return Position{lonSum / float64(count), latSum / float64(count)}
}

// ringCentroid averages the ring's vertices, skipping the closing duplicate
// when present.
func ringCentroid(ring Ring) (Position, bool) {
	n := len(ring)
	if n == 0 {
		return Position{}, false
	}
	if n > 1 && ring[0] == ring[n-1] {
		n--
	}
	var lonSum, latSum float64
	for _, p := range ring[:n] {
		lonSum += p.Lon()
		latSum += p.Lat()
	}
	return Position{lonSum / float64(n), latSum / float64(n)}, true
}
