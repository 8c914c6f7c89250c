package panel

import (
	"encoding/json"
	"sync"
)

// Hub is the server-wide pool of live connections, keyed by connection id.
// It is the sole broadcast target list for notification fan-out.
type Hub struct {
	mu    sync.RWMutex
	conns map[string]*Conn
}

// NewHub creates an empty pool.
func NewHub() *Hub {
	return &Hub{conns: make(map[string]*Conn)}
}

func (h *Hub) add(c *Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[c.id] = c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, id)
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends an identical notification envelope to every live
// connection. The pool is snapshotted before sending so removals during the
// iteration are tolerated; send failures are ignored here and surface on the
// failing connection's own read loop.
func (h *Hub) Broadcast(event string, body any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return err
	}

	h.mu.RLock()
	targets := make([]*Conn, 0, len(h.conns))
	for _, c := range h.conns {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		_ = c.sendNotification(event, raw)
	}
	return nil
}

// closeAll closes every connection and empties the pool.
func (h *Hub) closeAll() {
	h.mu.Lock()
	conns := h.conns
	h.conns = make(map[string]*Conn)
	h.mu.Unlock()
	for _, c := range conns {
		_ = c.close()
	}
}
