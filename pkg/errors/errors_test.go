package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	e := New(ErrCodeGeoMalformed, "unrecognized shape")
	assert.Equal(t, "[GEO_001] unrecognized shape", e.Error())

	withDetail := e.WithDetail("type was \"LineString\"")
	assert.Equal(t, "[GEO_001] unrecognized shape: type was \"LineString\"", withDetail.Error())
	// Original untouched.
	assert.Empty(t, e.Detail)
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, ErrCodeDatabaseError, "query failed"))
}

func TestWrap_PreservesCodeThroughUnknown(t *testing.T) {
	inner := GeolocationInvalid("2 errors")
	wrapped := Wrap(inner, ErrCodeUnknown, "generation failed")
	assert.Equal(t, ErrCodeGeoInvalid, wrapped.Code)
	assert.True(t, stderrors.Is(wrapped, wrapped))
	assert.Equal(t, inner, stderrors.Unwrap(wrapped))
}

func TestIsCode_TraversesChain(t *testing.T) {
	inner := InputTooLarge("6291456 bytes exceeds cap")
	mid := fmt.Errorf("reading request: %w", inner)
	outer := Wrap(mid, ErrCodeInternal, "request aborted")

	assert.True(t, IsCode(outer, ErrCodeGeoInputTooLarge))
	assert.False(t, IsCode(outer, ErrCodeGeoInvalid))
}

func TestGetCode(t *testing.T) {
	assert.Equal(t, CodeOK, GetCode(nil))
	assert.Equal(t, ErrCodeUnknown, GetCode(stderrors.New("plain")))
	assert.Equal(t, ErrCodeGeoMalformed, GetCode(MalformedGeometry("nope")))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(MalformedGeometry("x")))
	assert.True(t, IsValidation(GeolocationInvalid("x")))
	assert.True(t, IsValidation(InputTooLarge("x")))
	assert.True(t, IsValidation(InvalidParam("x")))
	assert.False(t, IsValidation(Internal("x")))
	assert.False(t, IsValidation(nil))
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(NotFound("statement missing")))
	assert.True(t, IsNotFound(New(ErrCodeStatementNotFound, "missing")))
	assert.False(t, IsNotFound(Internal("boom")))
}

func TestHTTPStatusForCode(t *testing.T) {
	require.Equal(t, http.StatusBadRequest, HTTPStatusForCode(ErrCodeGeoMalformed))
	require.Equal(t, http.StatusUnprocessableEntity, HTTPStatusForCode(ErrCodeGeoInvalid))
	require.Equal(t, http.StatusRequestEntityTooLarge, HTTPStatusForCode(ErrCodeGeoInputTooLarge))
	require.Equal(t, http.StatusInternalServerError, HTTPStatusForCode(ErrorCode("BOGUS")))
}

func TestClientServerErrorSplit(t *testing.T) {
	assert.True(t, IsClientError(ErrCodeGeoMalformed))
	assert.False(t, IsServerError(ErrCodeGeoMalformed))
	assert.True(t, IsServerError(ErrCodeAnchorFailed))
}
