package panel

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/log"
)

type broadcastFrame struct {
	event string
	body  any
}

type fakeBroadcaster struct {
	listeners int

	mu     sync.Mutex
	frames []broadcastFrame
}

func (b *fakeBroadcaster) Len() int { return b.listeners }

func (b *fakeBroadcaster) Broadcast(event string, body any) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frames = append(b.frames, broadcastFrame{event: event, body: body})
	return nil
}

func (b *fakeBroadcaster) sent() []broadcastFrame {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]broadcastFrame(nil), b.frames...)
}

func quietLogger() log.Logger {
	return log.NewLogger(log.WithOutput(log.NewWriterOutput(io.Discard)))
}

func TestFanoutBroadcastsJobSnapshot(t *testing.T) {
	job := &fakeJob{info: api.Job{ID: "42", Name: "send"}, state: engine.StateActive}
	q := newFakeQueue("mail", job)
	eng := &fakeEngine{queues: []*fakeQueue{q}}
	hub := &fakeBroadcaster{listeners: 1}
	f := NewFanout(eng, hub, quietLogger())

	f.handle(context.Background(), q, engine.Event{Queue: "mail", Type: engine.EventActive, JobID: "42"})

	if len(hub.sent()) != 1 {
		t.Fatalf("frames = %+v", hub.sent())
	}
	frame := hub.sent()[0]
	if frame.event != api.EventJobActive {
		t.Fatalf("event = %q", frame.event)
	}
	body := frame.body.(api.Job)
	if body.ID != "42" || body.Queue != "mail" || body.Name != "send" {
		t.Fatalf("body = %+v", body)
	}
}

func TestFanoutSkipsLookupWithoutListeners(t *testing.T) {
	q := newFakeQueue("mail", &fakeJob{info: api.Job{ID: "42"}})
	eng := &fakeEngine{queues: []*fakeQueue{q}}
	hub := &fakeBroadcaster{listeners: 0}
	f := NewFanout(eng, hub, quietLogger())

	f.handle(context.Background(), q, engine.Event{Queue: "mail", Type: engine.EventActive, JobID: "42"})

	if q.lookups != 0 {
		t.Fatalf("lookups = %d, want 0", q.lookups)
	}
	if len(hub.sent()) != 0 {
		t.Fatalf("frames = %+v", hub.sent())
	}
}

func TestFanoutDropsVanishedJob(t *testing.T) {
	q := newFakeQueue("mail")
	eng := &fakeEngine{queues: []*fakeQueue{q}}
	hub := &fakeBroadcaster{listeners: 1}
	f := NewFanout(eng, hub, quietLogger())

	// The job completed and was removed before we looked it up; the stale
	// completion must not be broadcast.
	f.handle(context.Background(), q, engine.Event{Queue: "mail", Type: engine.EventCompleted, JobID: "gone"})

	if q.lookups != 1 {
		t.Fatalf("lookups = %d, want 1", q.lookups)
	}
	if len(hub.sent()) != 0 {
		t.Fatalf("frames = %+v", hub.sent())
	}
}

func TestFanoutSynthesizesRemovalBody(t *testing.T) {
	q := newFakeQueue("mail")
	eng := &fakeEngine{queues: []*fakeQueue{q}}
	hub := &fakeBroadcaster{listeners: 1}
	f := NewFanout(eng, hub, quietLogger())

	f.handle(context.Background(), q, engine.Event{Queue: "mail", Type: engine.EventRemoved, JobID: "42"})

	if q.lookups != 0 {
		t.Fatalf("lookups = %d, want 0 for removal", q.lookups)
	}
	if len(hub.sent()) != 1 {
		t.Fatalf("frames = %+v", hub.sent())
	}
	frame := hub.sent()[0]
	if frame.event != api.EventJobRemoved {
		t.Fatalf("event = %q", frame.event)
	}
	body := frame.body.(api.Job)
	if body.ID != "42" || body.Queue != "mail" || body.Name != "" || body.State != "" {
		t.Fatalf("body = %+v", body)
	}
}

func TestFanoutConsumesQueueEvents(t *testing.T) {
	job := &fakeJob{info: api.Job{ID: "7"}, state: engine.StateWaiting}
	q := newFakeQueue("mail", job)
	eng := &fakeEngine{queues: []*fakeQueue{q}}
	hub := &fakeBroadcaster{listeners: 1}
	f := NewFanout(eng, hub, quietLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := f.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}

	q.events <- engine.Event{Queue: "mail", Type: engine.EventWaiting, JobID: "7"}
	close(q.events)

	deadline := time.Now().Add(time.Second)
	for len(hub.sent()) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("event never broadcast")
		}
		time.Sleep(time.Millisecond)
	}
	if frame := hub.sent()[0]; frame.event != api.EventJobWaiting {
		t.Fatalf("event = %q", frame.event)
	}
}
