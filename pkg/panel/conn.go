package panel

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/kelp404/bull-admin-panel/pkg/api"
)

// Conn is one live duplex channel in the pool. Writes are serialized by a
// mutex; gorilla connections allow at most one concurrent writer.
type Conn struct {
	id string
	ws *websocket.Conn
	mu sync.Mutex
}

func newConn(id string, ws *websocket.Conn) *Conn {
	return &Conn{id: id, ws: ws}
}

// ID returns the generated connection id.
func (c *Conn) ID() string { return c.id }

func (c *Conn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteJSON(v)
}

// sendResponse writes a response envelope for the given request id.
func (c *Conn) sendResponse(requestID string, status int, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return c.writeJSON(api.Response{
		Type:   api.TypeResponse,
		ID:     requestID,
		Status: status,
		Body:   raw,
	})
}

// sendNotification writes a pre-marshaled notification envelope.
func (c *Conn) sendNotification(event string, body json.RawMessage) error {
	return c.writeJSON(api.Notification{
		Type:  api.TypeNotification,
		Event: event,
		Body:  body,
	})
}

func (c *Conn) close() error { return c.ws.Close() }
