package geometry

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func normalized(t *testing.T, input string) *Collection {
	t.Helper()
	c, err := Normalize(json.RawMessage(input))
	require.NoError(t, err)
	return c
}

func TestDigest_Deterministic(t *testing.T) {
	c := normalized(t, collectionJSON(featureJSON(pointJSON)))

	first, err := Digest(c)
	require.NoError(t, err)
	second, err := Digest(c)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, strings.HasPrefix(first, "0x"))
	assert.Len(t, first, 2+64)
	assert.Equal(t, strings.ToLower(first), first)
}

func TestDigest_IndependentOfInputShape(t *testing.T) {
	bare, err := Digest(normalized(t, pointJSON))
	require.NoError(t, err)
	wrapped, err := Digest(normalized(t, `{"type":"Feature","geometry":`+pointJSON+`}`))
	require.NoError(t, err)
	assert.Equal(t, bare, wrapped)
}

func TestDigest_IgnoresIncidentalFormatting(t *testing.T) {
	compact, err := Digest(normalized(t, `{"type":"Point","coordinates":[10.123456,0.5]}`))
	require.NoError(t, err)
	spaced, err := Digest(normalized(t, `{ "type" : "Point" , "coordinates" : [ 10.123456 , 0.50 ] }`))
	require.NoError(t, err)
	assert.Equal(t, compact, spaced)
}

func TestDigest_SensitiveToCoordinateChange(t *testing.T) {
	base, err := Digest(normalized(t, `{"type":"Point","coordinates":[10.123456,0.123456]}`))
	require.NoError(t, err)
	nudged, err := Digest(normalized(t, `{"type":"Point","coordinates":[10.123457,0.123456]}`))
	require.NoError(t, err)
	assert.NotEqual(t, base, nudged)
}

func TestDigest_SensitiveToProperties(t *testing.T) {
	without, err := Digest(normalized(t, `{"type":"Feature","geometry":`+pointJSON+`}`))
	require.NoError(t, err)
	with, err := Digest(normalized(t, featureJSON(pointJSON)))
	require.NoError(t, err)
	assert.NotEqual(t, without, with)
}
