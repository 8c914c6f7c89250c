package panel

import "fmt"

// Error is a status-coded failure raised by handlers and serialized into an
// error response envelope. Extra carries structured detail, such as which
// query field failed validation.
type Error struct {
	Status  int
	Message string
	Extra   any
}

func (e *Error) Error() string { return e.Message }

// BadRequest creates a 400 validation error.
func BadRequest(message string, extra any) *Error {
	return &Error{Status: 400, Message: message, Extra: extra}
}

// NotFound creates a 404 error.
func NotFound(format string, args ...any) *Error {
	return &Error{Status: 404, Message: fmt.Sprintf(format, args...)}
}

// Internal creates a 500 error.
func Internal(message string) *Error {
	return &Error{Status: 500, Message: message}
}

// AuthError rejects an upgrade handshake with an HTTP status and reason.
// The authorization hook returns it to control the rejection response.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }
