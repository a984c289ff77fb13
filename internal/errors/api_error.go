package errors

import "net/http"

// APIError is both the HTTP error envelope written by the sync server and
// the error value the remote client returns for non-2xx responses.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// WithDetails attaches a payload, such as the current server copy of a
// record that lost a version check.
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func New(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

func BadRequest(code, message string) *APIError {
	return New(http.StatusBadRequest, code, message)
}

func NotFound(code, message string) *APIError {
	return New(http.StatusNotFound, code, message)
}

func Conflict(code, message string, details any) *APIError {
	return New(http.StatusConflict, code, message).WithDetails(details)
}

func Unauthorized(message string) *APIError {
	return New(http.StatusUnauthorized, "unauthorized", orDefault(message, "unauthorized"))
}

func Internal(message string) *APIError {
	return New(http.StatusInternalServerError, "internal_error", orDefault(message, "internal server error"))
}

// FromStatus rebuilds an APIError from a response envelope received by a
// client of this API.
func FromStatus(status int, code, message string) *APIError {
	code = orDefault(code, http.StatusText(status))
	return New(status, code, orDefault(message, code))
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
