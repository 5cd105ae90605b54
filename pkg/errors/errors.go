// Package errors provides the unified error type and factory functions for the
// EUDR compliance engine. Every layer (domain, application, infrastructure,
// interfaces) uses AppError as the single carrier for structured error
// information, enabling consistent HTTP responses, logging, and metrics.
package errors

import (
	"errors"
	"fmt"
)

// AppError is the single structured error type used throughout the engine.
// It satisfies the standard error interface and supports Go 1.13+ error
// wrapping so that errors.Is / errors.As / errors.Unwrap work transparently
// across all layers.
//
// Usage:
//
//	return errors.New(errors.ErrCodeGeoMalformed, "unrecognized GeoJSON shape")
//	return errors.Wrap(repoErr, errors.ErrCodeDatabaseError, "failed to load statement")
//	return errors.GeolocationInvalid("3 validation errors").WithDetail(strings.Join(report.Errors, "; "))
type AppError struct {
	// Code is the typed error code that uniquely identifies the failure category.
	Code ErrorCode

	// Message is the primary human-readable description, suitable for
	// inclusion in API responses returned to callers.
	Message string

	// Detail carries supplementary context (feature indices, rule names,
	// reference numbers) that helps a caller pinpoint the offending input.
	Detail string

	// Cause is the underlying error, enabling errors.Is / errors.As traversal.
	Cause error
}

// Error implements the standard error interface.
// Format: "[<code>] <message>: <detail>", detail omitted when empty.
func (e *AppError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetail returns a shallow copy of the receiver with Detail set.
// Safe to call on a nil pointer (returns nil).
func (e *AppError) WithDetail(detail string) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Detail = detail
	return &clone
}

// WithCause returns a shallow copy of the receiver with Cause set.
func (e *AppError) WithCause(err error) *AppError {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Cause = err
	return &clone
}

// New constructs a fresh AppError with the given code and message.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Newf constructs a fresh AppError with a formatted message.
func Newf(code ErrorCode, format string, args ...interface{}) *AppError {
	return &AppError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap constructs an AppError that wraps an existing error. If err is nil,
// Wrap returns nil so it can be used inline:
//
//	return errors.Wrap(repo.FindByReference(ctx, ref), errors.ErrCodeDatabaseError, "query failed")
//
// When err is already an *AppError and code is ErrCodeUnknown, the original
// code is preserved so the domain classification survives cross-layer
// propagation.
func Wrap(err error, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}
	if code == ErrCodeUnknown {
		var ae *AppError
		if errors.As(err, &ae) {
			code = ae.Code
		}
	}
	return &AppError{Code: code, Message: message, Cause: err}
}

// IsCode reports whether any error in err's chain is an *AppError with the
// given code. It is the idiomatic way to check domain-specific failure modes:
//
//	if errors.IsCode(err, errors.ErrCodeGeoInvalid) { ... }
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	for err != nil {
		if errors.As(err, &ae) && ae.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the ErrorCode from the first *AppError in err's chain,
// or ErrCodeUnknown when none is present. Useful in middleware and metrics
// layers that need a single code label without coupling to domain errors.
func GetCode(err error) ErrorCode {
	if err == nil {
		return CodeOK
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ErrCodeUnknown
}

// IsNotFound reports whether any error in err's chain carries a not-found code.
func IsNotFound(err error) bool {
	return IsCode(err, ErrCodeNotFound) || IsCode(err, ErrCodeStatementNotFound)
}

// IsValidation reports whether err represents rejected caller input: malformed
// geometry, failed compliance rules, oversized payloads, or generic bad
// parameters. These are recoverable by the caller correcting input.
func IsValidation(err error) bool {
	for _, code := range []ErrorCode{
		ErrCodeBadRequest, ErrCodeValidation,
		ErrCodeGeoMalformed, ErrCodeGeoInvalid, ErrCodeGeoInputTooLarge,
	} {
		if IsCode(err, code) {
			return true
		}
	}
	return false
}

// IsConflict reports whether any error in err's chain carries a conflict code.
func IsConflict(err error) bool {
	return IsCode(err, ErrCodeConflict) || IsCode(err, ErrCodeStatementExists)
}

// Convenience factories for the most common conditions. Call sites read
// naturally:
//
//	return errors.MalformedGeometry("input is not an object")
//	return errors.NotFound("statement " + ref + " not found")

// NotFound constructs an ErrCodeNotFound AppError.
func NotFound(message string) *AppError {
	return &AppError{Code: ErrCodeNotFound, Message: message}
}

// InvalidParam constructs an ErrCodeBadRequest AppError.
func InvalidParam(message string) *AppError {
	return &AppError{Code: ErrCodeBadRequest, Message: message}
}

// Internal constructs an ErrCodeInternal AppError. Always log the underlying
// cause before or after calling Internal.
func Internal(message string) *AppError {
	return &AppError{Code: ErrCodeInternal, Message: message}
}

// MalformedGeometry constructs an ErrCodeGeoMalformed AppError: the input
// could not be recognized as any supported GeoJSON shape.
func MalformedGeometry(message string) *AppError {
	return &AppError{Code: ErrCodeGeoMalformed, Message: message}
}

// GeolocationInvalid constructs an ErrCodeGeoInvalid AppError: the input
// parsed but failed one or more compliance rules.
func GeolocationInvalid(message string) *AppError {
	return &AppError{Code: ErrCodeGeoInvalid, Message: message}
}

// InputTooLarge constructs an ErrCodeGeoInputTooLarge AppError.
func InputTooLarge(message string) *AppError {
	return &AppError{Code: ErrCodeGeoInputTooLarge, Message: message}
}

// AreaCalculationFailed constructs an ErrCodeGeoAreaFailed AppError. The
// validator downgrades this to a warning; it is never fatal on its own.
func AreaCalculationFailed(message string) *AppError {
	return &AppError{Code: ErrCodeGeoAreaFailed, Message: message}
}
