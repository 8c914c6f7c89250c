package embedded

import (
	"context"
	"sync"

	"github.com/kelp404/bull-admin-panel/pkg/engine"
)

// subscriberBuffer bounds each subscriber channel. A subscriber that falls
// this far behind loses events rather than stalling producers.
const subscriberBuffer = 128

// notifier is the in-process lifecycle event bus for one queue.
type notifier struct {
	mu     sync.Mutex
	subs   map[int]chan engine.Event
	nextID int
	closed bool
}

func newNotifier() *notifier {
	return &notifier{subs: map[int]chan engine.Event{}}
}

// subscribe registers a new event channel. The channel closes when ctx is
// cancelled or the notifier shuts down.
func (n *notifier) subscribe(ctx context.Context) <-chan engine.Event {
	ch := make(chan engine.Event, subscriberBuffer)

	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		close(ch)
		return ch
	}
	token := n.nextID
	n.nextID++
	n.subs[token] = ch
	n.mu.Unlock()

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		if _, ok := n.subs[token]; ok {
			delete(n.subs, token)
			close(ch)
		}
		n.mu.Unlock()
	}()
	return ch
}

// publish delivers an event to every subscriber, dropping it for subscribers
// whose buffer is full.
func (n *notifier) publish(ev engine.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// close terminates every subscriber channel.
func (n *notifier) close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	for token, ch := range n.subs {
		delete(n.subs, token)
		close(ch)
	}
}
