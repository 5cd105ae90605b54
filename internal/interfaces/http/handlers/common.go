// Package handlers implements the HTTP handlers of the compliance API.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/agroledger/eudr-engine/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// writeAppError maps an AppError onto its HTTP status via the error code
// table. Server-side codes are masked; their detail stays in the logs.
func writeAppError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	resp := ErrorResponse{Code: code.String(), Message: err.Error()}
	if ae, ok := err.(*errors.AppError); ok {
		resp.Message = ae.Message
		resp.Detail = ae.Detail
	}
	if errors.IsServerError(code) {
		resp = ErrorResponse{Code: code.String(), Message: "internal server error"}
	}
	writeJSON(w, status, resp)
}

// readBody reads the (already size-capped) request body.
func readBody(r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if stderrors.As(err, &maxErr) {
			return nil, errors.InputTooLarge("request body exceeds the configured limit")
		}
		return nil, errors.InvalidParam("failed to read request body")
	}
	return body, nil
}

// decodeJSON decodes the request body into dst. Unknown fields are ignored
// so clients can send supersets of the request schema.
func decodeJSON(r *http.Request, dst interface{}) error {
	body, err := readBody(r)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.InvalidParam("request body is required")
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return errors.InvalidParam("request body is not valid JSON: " + err.Error())
	}
	return nil
}
