package client

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kelp404/bull-admin-panel/pkg/api"
)

// Terminal request failures.
var (
	// ErrTimeout settles a request whose response never arrived within the
	// request timeout after transmission.
	ErrTimeout = errors.New("client: request timed out")

	// ErrClosed settles every request still pending when the facade closes.
	ErrClosed = errors.New("client: closed")
)

// Error is a non-success response envelope surfaced as a Go error. Status
// carries the wire status code; Stack is only present when the server runs
// in debug mode.
type Error struct {
	Status  int
	Message string
	Stack   string
	Extra   json.RawMessage
}

func (e *Error) Error() string {
	return fmt.Sprintf("client: %s (status %d)", e.Message, e.Status)
}

// responseError converts a non-success response into an *Error.
func responseError(res *api.Response) *Error {
	e := &Error{Status: res.Status, Message: "request failed"}
	var body api.ErrorBody
	if err := json.Unmarshal(res.Body, &body); err == nil && body.Message != "" {
		e.Message = body.Message
		e.Stack = body.Stack
		e.Extra = body.Extra
	}
	return e
}
