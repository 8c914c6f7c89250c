package client

import (
	"encoding/json"
	"sync"

	"github.com/kelp404/bull-admin-panel/pkg/id"
)

// Handler consumes one notification body.
type Handler func(body json.RawMessage)

// registry maps (event, token) to notification handlers. Tokens are random,
// so independently registered handlers never collide and each unsubscribe
// closure removes exactly its own handler.
type registry struct {
	mu   sync.RWMutex
	subs map[string]map[string]Handler
}

func newRegistry() *registry {
	return &registry{subs: map[string]map[string]Handler{}}
}

func (r *registry) add(event string, h Handler) func() {
	token := id.Token()
	r.mu.Lock()
	handlers := r.subs[event]
	if handlers == nil {
		handlers = map[string]Handler{}
		r.subs[event] = handlers
	}
	handlers[token] = h
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		if handlers, ok := r.subs[event]; ok {
			delete(handlers, token)
			if len(handlers) == 0 {
				delete(r.subs, event)
			}
		}
		r.mu.Unlock()
	}
}

// dispatch invokes every handler registered for the event. Handlers run on
// the read-loop goroutine; a handler that blocks stalls frame processing.
func (r *registry) dispatch(event string, body json.RawMessage) {
	r.mu.RLock()
	handlers := make([]Handler, 0, len(r.subs[event]))
	for _, h := range r.subs[event] {
		handlers = append(handlers, h)
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h(body)
	}
}
