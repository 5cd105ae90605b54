package errors

import "net/http"

// ErrorCode is a string identifier for a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	ErrCodeInternal           ErrorCode = "COMMON_001"
	ErrCodeBadRequest         ErrorCode = "COMMON_002"
	ErrCodeNotFound           ErrorCode = "COMMON_003"
	ErrCodeConflict           ErrorCode = "COMMON_004"
	ErrCodeTimeout            ErrorCode = "COMMON_005"
	ErrCodeValidation         ErrorCode = "COMMON_006"
	ErrCodeSerialization      ErrorCode = "COMMON_007"
	ErrCodeDatabaseError      ErrorCode = "COMMON_008"
	ErrCodeCacheError         ErrorCode = "COMMON_009"
	ErrCodeStorageError       ErrorCode = "COMMON_010"
	ErrCodeMessageQueueError  ErrorCode = "COMMON_011"
	ErrCodeServiceUnavailable ErrorCode = "COMMON_012"

	ErrCodeUnknown ErrorCode = "UNKNOWN"
	CodeOK         ErrorCode = "OK"
)

// Geolocation module error codes.
//
// GEO_001: input not parseable as any recognized GeoJSON shape (unrecoverable).
// GEO_002: structurally parseable but fails compliance rules; carries the
// itemized errors in Detail, recoverable by the caller correcting input.
// GEO_003: degenerate polygon; downgraded to a validation warning.
// GEO_004: serialized input exceeds the configured size cap; rejected before
// normalization.
const (
	ErrCodeGeoMalformed     ErrorCode = "GEO_001"
	ErrCodeGeoInvalid       ErrorCode = "GEO_002"
	ErrCodeGeoAreaFailed    ErrorCode = "GEO_003"
	ErrCodeGeoInputTooLarge ErrorCode = "GEO_004"
)

// Due diligence statement module error codes.
const (
	ErrCodeStatementNotFound     ErrorCode = "DDS_001"
	ErrCodeStatementExists       ErrorCode = "DDS_002"
	ErrCodeStatementAssemblyFail ErrorCode = "DDS_003"
	ErrCodeAnchorFailed          ErrorCode = "DDS_004"
	ErrCodeDocumentStoreFailed   ErrorCode = "DDS_005"
)

// Telemetry module error codes.
const (
	ErrCodeTelemetryEmptyBuffer ErrorCode = "TEL_001"
	ErrCodeTelemetryBadReading  ErrorCode = "TEL_002"
)

// errorCodeHTTPStatus maps codes to HTTP status codes.
var errorCodeHTTPStatus = map[ErrorCode]int{
	ErrCodeInternal:           http.StatusInternalServerError,
	ErrCodeBadRequest:         http.StatusBadRequest,
	ErrCodeNotFound:           http.StatusNotFound,
	ErrCodeConflict:           http.StatusConflict,
	ErrCodeTimeout:            http.StatusGatewayTimeout,
	ErrCodeValidation:         http.StatusUnprocessableEntity,
	ErrCodeSerialization:      http.StatusInternalServerError,
	ErrCodeDatabaseError:      http.StatusInternalServerError,
	ErrCodeCacheError:         http.StatusInternalServerError,
	ErrCodeStorageError:       http.StatusInternalServerError,
	ErrCodeMessageQueueError:  http.StatusInternalServerError,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,

	ErrCodeGeoMalformed:     http.StatusBadRequest,
	ErrCodeGeoInvalid:       http.StatusUnprocessableEntity,
	ErrCodeGeoAreaFailed:    http.StatusUnprocessableEntity,
	ErrCodeGeoInputTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeStatementNotFound:     http.StatusNotFound,
	ErrCodeStatementExists:       http.StatusConflict,
	ErrCodeStatementAssemblyFail: http.StatusInternalServerError,
	ErrCodeAnchorFailed:          http.StatusInternalServerError,
	ErrCodeDocumentStoreFailed:   http.StatusInternalServerError,

	ErrCodeTelemetryEmptyBuffer: http.StatusNotFound,
	ErrCodeTelemetryBadReading:  http.StatusBadRequest,
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode,
// defaulting to 500 for unmapped codes.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// IsClientError returns true if the code corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError returns true if the code corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}
