package panel

import "sync"

// responseSender is the frame-writing seam between responses and the
// underlying connection.
type responseSender interface {
	sendResponse(requestID string, status int, body any) error
}

// Response serializes a handler result back onto the originating channel.
// Only the first JSON/JSONStatus call transmits a frame; every later call is
// a no-op, so a handler that already responded cannot be overwritten by a
// late error path.
type Response struct {
	requestID string
	sender    responseSender

	mu   sync.Mutex
	sent bool
}

func newResponse(requestID string, sender responseSender) *Response {
	return &Response{requestID: requestID, sender: sender}
}

// JSON sends a 200 response with the given body.
func (r *Response) JSON(body any) error { return r.JSONStatus(200, body) }

// JSONStatus sends a response with an explicit status code.
func (r *Response) JSONStatus(status int, body any) error {
	r.mu.Lock()
	if r.sent {
		r.mu.Unlock()
		return nil
	}
	r.sent = true
	r.mu.Unlock()
	return r.sender.sendResponse(r.requestID, status, body)
}

// Sent reports whether a response frame was already transmitted.
func (r *Response) Sent() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sent
}
