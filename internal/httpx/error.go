package httpx

import "net/http"

// Error is a structured HTTP error carried through the route pipeline and
// rendered as a JSON envelope. Fields is only set for validation errors.
type Error struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// NewError builds an Error with an explicit status code.
func NewError(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// BadRequest is a 400-class error for malformed or missing input.
func BadRequest(message string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: message}
}

// ValidationFailed is a 400-class error carrying per-field violations.
func ValidationFailed(fields map[string]string) *Error {
	return &Error{
		Status:  http.StatusBadRequest,
		Message: "validation failed",
		Fields:  fields,
	}
}

// Unauthorized is a 401 error surfaced by session middleware.
func Unauthorized(message string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: message}
}

// Forbidden is a 403 error surfaced by tenant/membership middleware.
func Forbidden(message string) *Error {
	return &Error{Status: http.StatusForbidden, Message: message}
}

// NotFound is a 404 error.
func NotFound(message string) *Error {
	return &Error{Status: http.StatusNotFound, Message: message}
}

// Internal is a 500 error. The original cause is logged, never leaked.
func Internal(message string) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: message}
}
