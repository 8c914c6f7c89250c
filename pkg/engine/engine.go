package engine

import (
	"context"
	"errors"
	"time"

	"github.com/kelp404/bull-admin-panel/pkg/api"
)

// State is a job lifecycle state.
type State string

// Job states.
const (
	StateWaiting   State = "waiting"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
	StateDelayed   State = "delayed"
	StatePaused    State = "paused"
)

// AllStates returns every job state, in the order used for unfiltered listings.
func AllStates() []State {
	return []State{StateWaiting, StateActive, StateCompleted, StateFailed, StateDelayed, StatePaused}
}

// ValidState reports whether s names a known job state.
func ValidState(s State) bool {
	switch s {
	case StateWaiting, StateActive, StateCompleted, StateFailed, StateDelayed, StatePaused:
		return true
	}
	return false
}

// EventType is a lifecycle transition category.
type EventType string

// Lifecycle event types emitted by queues.
const (
	EventWaiting   EventType = "waiting"
	EventActive    EventType = "active"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventRemoved   EventType = "removed"
)

// NotificationEvent maps an event type to its wire notification name.
func (t EventType) NotificationEvent() string {
	switch t {
	case EventWaiting:
		return api.EventJobWaiting
	case EventActive:
		return api.EventJobActive
	case EventCompleted:
		return api.EventJobCompleted
	case EventFailed:
		return api.EventJobFailed
	case EventRemoved:
		return api.EventJobRemoved
	}
	return ""
}

// Event is a single lifecycle signal for one job. Removal events may carry
// only the job id; the job record is already gone.
type Event struct {
	Queue string
	Type  EventType
	JobID string
}

// Counts holds per-state job totals for one queue.
type Counts struct {
	Waiting   int64
	Active    int64
	Completed int64
	Failed    int64
	Delayed   int64
	Paused    int64
}

// Of returns the total for one state.
func (c Counts) Of(s State) int64 {
	switch s {
	case StateWaiting:
		return c.Waiting
	case StateActive:
		return c.Active
	case StateCompleted:
		return c.Completed
	case StateFailed:
		return c.Failed
	case StateDelayed:
		return c.Delayed
	case StatePaused:
		return c.Paused
	}
	return 0
}

// Sentinel errors mapped to 404 responses by the panel.
var (
	ErrQueueNotFound = errors.New("queue not found")
	ErrJobNotFound   = errors.New("job not found")
)

// Engine is the set of named queues the panel monitors.
type Engine interface {
	// Queues returns the monitored queues in a stable order.
	Queues() []Queue
	// Queue looks a queue up by name.
	Queue(name string) (Queue, bool)
	// Close releases engine resources.
	Close() error
}

// Queue is a single named job queue.
type Queue interface {
	Name() string

	// Counts returns per-state totals.
	Counts(ctx context.Context) (Counts, error)

	// Jobs returns jobs in the given states within the inclusive range
	// [start, end], newest listing order per state. A nil or empty states
	// slice means all states.
	Jobs(ctx context.Context, states []State, start, end int64) ([]Job, error)

	// Job fetches a job snapshot by id. Returns ErrJobNotFound when the job
	// no longer exists.
	Job(ctx context.Context, id string) (Job, error)

	// Clean purges jobs of a terminal state older than grace.
	Clean(ctx context.Context, grace time.Duration, state State) error

	// Events returns the queue's lifecycle event channel. The channel closes
	// when ctx is cancelled or the engine shuts down.
	Events(ctx context.Context) (<-chan Event, error)
}

// Job is one job held by a queue.
type Job interface {
	ID() string

	// Info returns the current data snapshot for serialization.
	Info() api.Job

	// State returns the authoritative current lifecycle state.
	State(ctx context.Context) (State, error)

	// IsFailed reports whether the job is in the failed state.
	IsFailed(ctx context.Context) (bool, error)

	// Retry moves a failed job back to the waiting state.
	Retry(ctx context.Context) error

	// Remove deletes the job from its queue.
	Remove(ctx context.Context) error
}
