package client

import (
	"encoding/json"
	"testing"

	"github.com/kelp404/bull-admin-panel/pkg/api"
)

func TestRegistryDispatchesPerEvent(t *testing.T) {
	r := newRegistry()
	var completed, failed int
	r.add(api.EventJobCompleted, func(json.RawMessage) { completed++ })
	r.add(api.EventJobFailed, func(json.RawMessage) { failed++ })

	r.dispatch(api.EventJobCompleted, nil)
	r.dispatch(api.EventJobCompleted, nil)
	r.dispatch(api.EventJobFailed, nil)

	if completed != 2 || failed != 1 {
		t.Fatalf("completed = %d, failed = %d", completed, failed)
	}
}

func TestRegistryUnsubscribeIsIndependent(t *testing.T) {
	r := newRegistry()
	var first, second int
	cancelFirst := r.add(api.EventJobActive, func(json.RawMessage) { first++ })
	r.add(api.EventJobActive, func(json.RawMessage) { second++ })

	cancelFirst()
	r.dispatch(api.EventJobActive, nil)

	if first != 0 {
		t.Fatalf("unsubscribed handler ran %d times", first)
	}
	if second != 1 {
		t.Fatalf("remaining handler ran %d times, want 1", second)
	}

	// Unsubscribing twice is harmless.
	cancelFirst()
	r.dispatch(api.EventJobActive, nil)
	if second != 2 {
		t.Fatalf("remaining handler ran %d times, want 2", second)
	}
}

func TestRegistryNoReplay(t *testing.T) {
	r := newRegistry()
	r.dispatch(api.EventJobWaiting, json.RawMessage(`{"id":"1"}`))

	var calls int
	r.add(api.EventJobWaiting, func(json.RawMessage) { calls++ })
	if calls != 0 {
		t.Fatalf("late subscriber saw %d replayed notifications", calls)
	}

	r.dispatch(api.EventJobWaiting, nil)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestRegistryUnknownEventIsNoOp(t *testing.T) {
	r := newRegistry()
	r.dispatch("job-unknown", nil)
}
