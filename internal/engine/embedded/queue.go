package embedded

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	pebblestore "github.com/kelp404/bull-admin-panel/internal/storage/pebble"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/id"
	"github.com/kelp404/bull-admin-panel/pkg/log"
)

// ErrBadTransition rejects a producer operation against a job whose current
// state does not allow it.
var ErrBadTransition = errors.New("embedded: state transition not allowed")

// Queue is one named queue inside the store. All state transitions are
// serialized by the queue mutex; reads run lock-free against the store.
type Queue struct {
	name   string
	db     *pebblestore.DB
	gen    *id.Generator
	events *notifier
	logger log.Logger

	mu sync.Mutex
}

func newQueue(name string, db *pebblestore.DB, gen *id.Generator, logger log.Logger) *Queue {
	return &Queue{
		name:   name,
		db:     db,
		gen:    gen,
		events: newNotifier(),
		logger: logger.With(log.Str("queue", name)),
	}
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// Counts returns per-state job totals by scanning the state indexes.
func (q *Queue) Counts(ctx context.Context) (engine.Counts, error) {
	var counts engine.Counts
	for _, state := range engine.AllStates() {
		n, err := q.countState(state)
		if err != nil {
			return engine.Counts{}, err
		}
		switch state {
		case engine.StateWaiting:
			counts.Waiting = n
		case engine.StateActive:
			counts.Active = n
		case engine.StateCompleted:
			counts.Completed = n
		case engine.StateFailed:
			counts.Failed = n
		case engine.StateDelayed:
			counts.Delayed = n
		case engine.StatePaused:
			counts.Paused = n
		}
	}
	return counts, nil
}

func (q *Queue) countState(state engine.State) (int64, error) {
	it, err := q.db.PrefixIter(indexPrefix(q.name, state))
	if err != nil {
		return 0, err
	}
	defer it.Close()

	var n int64
	for it.First(); it.Valid(); it.Next() {
		n++
	}
	return n, nil
}

// Jobs returns jobs of the given states within the inclusive range
// [start, end]. States are walked in the given order, newest jobs first
// within each state; the range slices the concatenation.
func (q *Queue) Jobs(ctx context.Context, states []engine.State, start, end int64) ([]engine.Job, error) {
	if start < 0 {
		start = 0
	}
	if end < start {
		return nil, nil
	}
	if len(states) == 0 {
		states = engine.AllStates()
	}

	var jobs []engine.Job
	var offset int64
	for _, state := range states {
		if offset > end {
			break
		}
		var err error
		jobs, offset, err = q.appendStateJobs(jobs, state, offset, start, end)
		if err != nil {
			return nil, err
		}
	}
	return jobs, nil
}

func (q *Queue) appendStateJobs(jobs []engine.Job, state engine.State, offset, start, end int64) ([]engine.Job, int64, error) {
	it, err := q.db.PrefixIter(indexPrefix(q.name, state))
	if err != nil {
		return nil, 0, err
	}
	defer it.Close()

	for it.First(); it.Valid() && offset <= end; it.Next() {
		if offset >= start {
			rec, err := decodeRecord(it.Value())
			if err != nil {
				return nil, 0, fmt.Errorf("embedded: corrupt index record: %w", err)
			}
			jobs = append(jobs, &queueJob{q: q, rec: *rec})
		}
		offset++
	}
	return jobs, offset, nil
}

// Job fetches a job snapshot by id.
func (q *Queue) Job(ctx context.Context, jobID string) (engine.Job, error) {
	rec, err := q.load(jobID)
	if err != nil {
		return nil, err
	}
	return &queueJob{q: q, rec: *rec}, nil
}

// Clean deletes every job of the given terminal state finished at least
// grace ago.
func (q *Queue) Clean(ctx context.Context, grace time.Duration, state engine.State) error {
	q.mu.Lock()
	removed, err := q.cleanLocked(grace, state)
	q.mu.Unlock()
	if err != nil {
		return err
	}

	for _, jobID := range removed {
		q.events.publish(engine.Event{Queue: q.name, Type: engine.EventRemoved, JobID: jobID})
	}
	q.logger.Debug("cleaned jobs", log.Str("state", string(state)), log.Int("removed", len(removed)))
	return nil
}

func (q *Queue) cleanLocked(grace time.Duration, state engine.State) ([]string, error) {
	it, err := q.db.PrefixIter(indexPrefix(q.name, state))
	if err != nil {
		return nil, err
	}
	defer it.Close()

	cutoff := time.Now().Add(-grace).UnixMilli()
	batch := q.db.NewBatch()
	defer batch.Close()

	var removed []string
	for it.First(); it.Valid(); it.Next() {
		rec, err := decodeRecord(it.Value())
		if err != nil {
			return nil, fmt.Errorf("embedded: corrupt index record: %w", err)
		}
		finished := rec.FinishedAt
		if finished == 0 {
			finished = rec.CreatedAt
		}
		if finished > cutoff {
			continue
		}
		if err := batch.Delete(append([]byte(nil), it.Key()...), nil); err != nil {
			return nil, err
		}
		if err := batch.Delete(jobKey(q.name, rec.ID), nil); err != nil {
			return nil, err
		}
		removed = append(removed, rec.ID)
	}
	if len(removed) == 0 {
		return nil, nil
	}
	if err := q.db.Commit(batch); err != nil {
		return nil, err
	}
	return removed, nil
}

// Events returns the queue's lifecycle event channel.
func (q *Queue) Events(ctx context.Context) (<-chan engine.Event, error) {
	return q.events.subscribe(ctx), nil
}

// Enqueue appends a new waiting job and returns its id.
func (q *Queue) Enqueue(ctx context.Context, name string, data json.RawMessage) (string, error) {
	jid := q.gen.Next()
	rec := &jobRecord{
		ID:        jid.String(),
		Name:      name,
		State:     engine.StateWaiting,
		Data:      data,
		CreatedAt: jid.Time().UnixMilli(),
	}

	q.mu.Lock()
	err := q.put(rec, "")
	q.mu.Unlock()
	if err != nil {
		return "", err
	}

	q.events.publish(engine.Event{Queue: q.name, Type: engine.EventWaiting, JobID: rec.ID})
	return rec.ID, nil
}

// MarkActive moves a waiting, delayed, or paused job to active.
func (q *Queue) MarkActive(ctx context.Context, jobID string) error {
	return q.transition(jobID, engine.EventActive, func(rec *jobRecord) error {
		switch rec.State {
		case engine.StateWaiting, engine.StateDelayed, engine.StatePaused:
		default:
			return fmt.Errorf("%w: %s is %s", ErrBadTransition, jobID, rec.State)
		}
		rec.State = engine.StateActive
		rec.ProcessedAt = time.Now().UnixMilli()
		return nil
	})
}

// Complete finishes an active job with an optional return value.
func (q *Queue) Complete(ctx context.Context, jobID string, returnValue json.RawMessage) error {
	return q.transition(jobID, engine.EventCompleted, func(rec *jobRecord) error {
		if rec.State != engine.StateActive {
			return fmt.Errorf("%w: %s is %s", ErrBadTransition, jobID, rec.State)
		}
		rec.State = engine.StateCompleted
		rec.FinishedAt = time.Now().UnixMilli()
		rec.ReturnValue = returnValue
		rec.Progress = 100
		return nil
	})
}

// Fail marks an active job failed with the given reason.
func (q *Queue) Fail(ctx context.Context, jobID, reason string) error {
	return q.transition(jobID, engine.EventFailed, func(rec *jobRecord) error {
		if rec.State != engine.StateActive {
			return fmt.Errorf("%w: %s is %s", ErrBadTransition, jobID, rec.State)
		}
		rec.State = engine.StateFailed
		rec.FinishedAt = time.Now().UnixMilli()
		rec.Attempts++
		rec.FailedReason = reason
		return nil
	})
}

// Pause parks a waiting job. The panel protocol has no paused event, so no
// notification is emitted.
func (q *Queue) Pause(ctx context.Context, jobID string) error {
	return q.transition(jobID, "", func(rec *jobRecord) error {
		if rec.State != engine.StateWaiting {
			return fmt.Errorf("%w: %s is %s", ErrBadTransition, jobID, rec.State)
		}
		rec.State = engine.StatePaused
		return nil
	})
}

// retry moves a failed job back to waiting. The failure bookkeeping is kept
// so the history of the job stays visible.
func (q *Queue) retry(jobID string) error {
	return q.transition(jobID, engine.EventWaiting, func(rec *jobRecord) error {
		if rec.State != engine.StateFailed {
			return fmt.Errorf("%w: %s is %s", ErrBadTransition, jobID, rec.State)
		}
		rec.State = engine.StateWaiting
		rec.FinishedAt = 0
		return nil
	})
}

// remove deletes one job and its index entry.
func (q *Queue) remove(jobID string) error {
	q.mu.Lock()
	err := q.removeLocked(jobID)
	q.mu.Unlock()
	if err != nil {
		return err
	}
	q.events.publish(engine.Event{Queue: q.name, Type: engine.EventRemoved, JobID: jobID})
	return nil
}

func (q *Queue) removeLocked(jobID string) error {
	rec, err := q.load(jobID)
	if err != nil {
		return err
	}
	jid, ok := id.Parse(rec.ID)
	if !ok {
		return fmt.Errorf("embedded: malformed job id %q", rec.ID)
	}

	batch := q.db.NewBatch()
	defer batch.Close()
	if err := batch.Delete(jobKey(q.name, rec.ID), nil); err != nil {
		return err
	}
	if err := batch.Delete(indexKey(q.name, rec.State, jid), nil); err != nil {
		return err
	}
	return q.db.Commit(batch)
}

// transition loads a job, applies the mutation, and rewrites the record and
// its index entry atomically. The event, when non-empty, is published after
// the commit.
func (q *Queue) transition(jobID string, ev engine.EventType, mutate func(*jobRecord) error) error {
	q.mu.Lock()
	err := q.transitionLocked(jobID, mutate)
	q.mu.Unlock()
	if err != nil {
		return err
	}
	if ev != "" {
		q.events.publish(engine.Event{Queue: q.name, Type: ev, JobID: jobID})
	}
	return nil
}

func (q *Queue) transitionLocked(jobID string, mutate func(*jobRecord) error) error {
	rec, err := q.load(jobID)
	if err != nil {
		return err
	}
	oldState := rec.State
	if err := mutate(rec); err != nil {
		return err
	}
	return q.put(rec, oldState)
}

// put writes the record and maintains its index entry. An empty oldState
// means the job is new.
func (q *Queue) put(rec *jobRecord, oldState engine.State) error {
	jid, ok := id.Parse(rec.ID)
	if !ok {
		return fmt.Errorf("embedded: malformed job id %q", rec.ID)
	}
	encoded, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	batch := q.db.NewBatch()
	defer batch.Close()
	if err := batch.Set(jobKey(q.name, rec.ID), encoded, nil); err != nil {
		return err
	}
	if oldState != "" && oldState != rec.State {
		if err := batch.Delete(indexKey(q.name, oldState, jid), nil); err != nil {
			return err
		}
	}
	if err := batch.Set(indexKey(q.name, rec.State, jid), encoded, nil); err != nil {
		return err
	}
	return q.db.Commit(batch)
}

func (q *Queue) load(jobID string) (*jobRecord, error) {
	raw, err := q.db.Get(jobKey(q.name, jobID))
	if errors.Is(err, pebblestore.ErrNotFound) {
		return nil, engine.ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(raw)
}

var _ engine.Queue = (*Queue)(nil)
