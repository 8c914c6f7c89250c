package api

import "encoding/json"

// Envelope type tags on server -> client frames.
const (
	TypeResponse     = "response"
	TypeNotification = "notification"
)

// Request is the client -> server envelope.
type Request struct {
	ID     string          `json:"id"`
	Method string          `json:"method"`
	URL    string          `json:"url"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// Response is the server -> client reply envelope. ID matches the
// originating request. Status uses HTTP semantics: [200,300) is success.
type Response struct {
	Type   string          `json:"type"`
	ID     string          `json:"id"`
	Status int             `json:"status"`
	Body   json.RawMessage `json:"body"`
}

// OK reports whether the response status is in the success range.
func (r *Response) OK() bool { return r.Status >= 200 && r.Status < 300 }

// Notification is the server -> client push envelope. It carries no request
// id; zero or more subscribers may be listening for Event.
type Notification struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Body  json.RawMessage `json:"body"`
}

// Inbound is the union shape the client parses server frames into before
// demultiplexing on Type.
type Inbound struct {
	Type   string          `json:"type"`
	ID     string          `json:"id,omitempty"`
	Status int             `json:"status,omitempty"`
	Event  string          `json:"event,omitempty"`
	Body   json.RawMessage `json:"body,omitempty"`
}

// ErrorBody is the body of a failed response.
type ErrorBody struct {
	Message string          `json:"message"`
	Stack   string          `json:"stack,omitempty"`
	Extra   json.RawMessage `json:"extra,omitempty"`
}

// Lifecycle event names pushed as notifications.
const (
	EventJobWaiting   = "job-waiting"
	EventJobActive    = "job-active"
	EventJobCompleted = "job-completed"
	EventJobFailed    = "job-failed"
	EventJobRemoved   = "job-removed"
)
