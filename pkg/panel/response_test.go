package panel

import (
	"sync"
	"testing"
)

type sentFrame struct {
	requestID string
	status    int
	body      any
}

// recordingSender captures response frames instead of writing to a socket.
type recordingSender struct {
	mu     sync.Mutex
	frames []sentFrame
}

func (s *recordingSender) sendResponse(requestID string, status int, body any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, sentFrame{requestID: requestID, status: status, body: body})
	return nil
}

func (s *recordingSender) sent() []sentFrame {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sentFrame(nil), s.frames...)
}

func TestResponseSendsAtMostOnce(t *testing.T) {
	sender := &recordingSender{}
	res := newResponse("req-1", sender)

	if err := res.JSON(map[string]string{"a": "1"}); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := res.JSONStatus(500, map[string]string{"b": "2"}); err != nil {
		t.Fatalf("second send: %v", err)
	}
	if err := res.JSON(nil); err != nil {
		t.Fatalf("third send: %v", err)
	}

	frames := sender.sent()
	if len(frames) != 1 {
		t.Fatalf("got %d frames, want 1", len(frames))
	}
	if frames[0].requestID != "req-1" || frames[0].status != 200 {
		t.Fatalf("frame = %+v", frames[0])
	}
	if !res.Sent() {
		t.Fatal("Sent() = false after transmission")
	}
}

func TestResponseSentStartsFalse(t *testing.T) {
	res := newResponse("req-2", &recordingSender{})
	if res.Sent() {
		t.Fatal("Sent() = true before any send")
	}
}

func TestResponseConcurrentSendersTransmitOne(t *testing.T) {
	sender := &recordingSender{}
	res := newResponse("req-3", sender)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = res.JSONStatus(200+n, n)
		}(i)
	}
	wg.Wait()

	if got := len(sender.sent()); got != 1 {
		t.Fatalf("got %d frames, want 1", got)
	}
}
