package redisq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/id"
	"github.com/kelp404/bull-admin-panel/pkg/log"
)

// ErrBadTransition rejects a producer operation against a job whose current
// state does not allow it.
var ErrBadTransition = errors.New("redisq: state transition not allowed")

// Queue is one named queue on the Redis server.
type Queue struct {
	name   string
	rdb    redis.UniversalClient
	keys   keys
	gen    *id.Generator
	logger log.Logger
}

func newQueue(name string, rdb redis.UniversalClient, k keys, gen *id.Generator, logger log.Logger) *Queue {
	return &Queue{
		name:   name,
		rdb:    rdb,
		keys:   k,
		gen:    gen,
		logger: logger.With(log.Str("queue", name)),
	}
}

// Name returns the queue name.
func (q *Queue) Name() string { return q.name }

// Counts returns per-state totals from the state list lengths.
func (q *Queue) Counts(ctx context.Context) (engine.Counts, error) {
	pipe := q.rdb.Pipeline()
	cmds := map[engine.State]*redis.IntCmd{}
	for _, state := range engine.AllStates() {
		cmds[state] = pipe.LLen(ctx, q.keys.stateList(q.name, state))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return engine.Counts{}, fmt.Errorf("redisq: counts: %w", err)
	}

	return engine.Counts{
		Waiting:   cmds[engine.StateWaiting].Val(),
		Active:    cmds[engine.StateActive].Val(),
		Completed: cmds[engine.StateCompleted].Val(),
		Failed:    cmds[engine.StateFailed].Val(),
		Delayed:   cmds[engine.StateDelayed].Val(),
		Paused:    cmds[engine.StatePaused].Val(),
	}, nil
}

// Jobs returns jobs of the given states within the inclusive range
// [start, end]. State lists hold newest jobs first; the range slices the
// concatenation across states.
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
	offset := int64(0)
	for _, state := range states {
		if offset > end {
			break
		}
		listKey := q.keys.stateList(q.name, state)
		length, err := q.rdb.LLen(ctx, listKey).Result()
		if err != nil {
			return nil, fmt.Errorf("redisq: llen %s: %w", listKey, err)
		}

		// Translate the global window onto this list's local indexes.
		lo := start - offset
		if lo < 0 {
			lo = 0
		}
		hi := end - offset
		offset += length
		if lo >= length {
			continue
		}
		ids, err := q.rdb.LRange(ctx, listKey, lo, hi).Result()
		if err != nil {
			return nil, fmt.Errorf("redisq: lrange %s: %w", listKey, err)
		}
		for _, jobID := range ids {
			job, err := q.Job(ctx, jobID)
			if errors.Is(err, engine.ErrJobNotFound) {
				// The hash expired or was deleted under the list entry.
				continue
			}
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job)
		}
	}
	return jobs, nil
}

// Job fetches a job snapshot by id.
func (q *Queue) Job(ctx context.Context, jobID string) (engine.Job, error) {
	h, err := q.rdb.HGetAll(ctx, q.keys.job(q.name, jobID)).Result()
	if err != nil {
		return nil, fmt.Errorf("redisq: hgetall: %w", err)
	}
	if len(h) == 0 {
		return nil, engine.ErrJobNotFound
	}
	return &queueJob{q: q, info: jobFromHash(q.name, h)}, nil
}

// Clean deletes every job of the given terminal state finished at least
// grace ago.
func (q *Queue) Clean(ctx context.Context, grace time.Duration, state engine.State) error {
	listKey := q.keys.stateList(q.name, state)
	ids, err := q.rdb.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return fmt.Errorf("redisq: lrange %s: %w", listKey, err)
	}

	cutoff := time.Now().Add(-grace).UnixMilli()
	for _, jobID := range ids {
		job, err := q.Job(ctx, jobID)
		if errors.Is(err, engine.ErrJobNotFound) {
			_ = q.rdb.LRem(ctx, listKey, 0, jobID).Err()
			continue
		}
		if err != nil {
			return err
		}
		info := job.Info()
		finished := info.FinishedAt
		if finished == 0 {
			finished = info.CreatedAt
		}
		if finished > cutoff {
			continue
		}
		if err := q.deleteJob(ctx, jobID, state); err != nil {
			return err
		}
	}
	return nil
}

// Events subscribes to the queue's pub/sub channel and adapts it to the
// engine event type. The returned channel closes when ctx is cancelled.
func (q *Queue) Events(ctx context.Context) (<-chan engine.Event, error) {
	sub := q.rdb.Subscribe(ctx, q.keys.events(q.name))
	// Force the subscription onto the wire before events start flowing.
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("redisq: subscribe: %w", err)
	}

	out := make(chan engine.Event, 128)
	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var ev eventMessage
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					q.logger.Warn("dropping malformed event payload", log.Err(err))
					continue
				}
				select {
				case out <- engine.Event{Queue: q.name, Type: ev.Type, JobID: ev.JobID}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

// Enqueue appends a new waiting job and returns its id.
func (q *Queue) Enqueue(ctx context.Context, name string, data json.RawMessage) (string, error) {
	jid := q.gen.Next()
	job := api.Job{
		ID:        jid.String(),
		Name:      name,
		State:     string(engine.StateWaiting),
		Data:      data,
		CreatedAt: jid.Time().UnixMilli(),
	}

	pipe := q.rdb.TxPipeline()
	pipe.HSet(ctx, q.keys.job(q.name, job.ID), hashFromJob(job))
	pipe.LPush(ctx, q.keys.stateList(q.name, engine.StateWaiting), job.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("redisq: enqueue: %w", err)
	}

	q.publish(ctx, engine.EventWaiting, job.ID)
	return job.ID, nil
}

// MarkActive moves a waiting, delayed, or paused job to active.
func (q *Queue) MarkActive(ctx context.Context, jobID string) error {
	return q.transition(ctx, jobID, engine.EventActive, func(job *api.Job) error {
		switch engine.State(job.State) {
		case engine.StateWaiting, engine.StateDelayed, engine.StatePaused:
		default:
			return fmt.Errorf("%w: %s is %s", ErrBadTransition, jobID, job.State)
		}
		job.State = string(engine.StateActive)
		job.ProcessedAt = time.Now().UnixMilli()
		return nil
	})
}

// Complete finishes an active job with an optional return value.
func (q *Queue) Complete(ctx context.Context, jobID string, returnValue json.RawMessage) error {
	return q.transition(ctx, jobID, engine.EventCompleted, func(job *api.Job) error {
		if engine.State(job.State) != engine.StateActive {
			return fmt.Errorf("%w: %s is %s", ErrBadTransition, jobID, job.State)
		}
		job.State = string(engine.StateCompleted)
		job.FinishedAt = time.Now().UnixMilli()
		job.ReturnValue = returnValue
		job.Progress = 100
		return nil
	})
}

// Fail marks an active job failed with the given reason.
func (q *Queue) Fail(ctx context.Context, jobID, reason string) error {
	return q.transition(ctx, jobID, engine.EventFailed, func(job *api.Job) error {
		if engine.State(job.State) != engine.StateActive {
			return fmt.Errorf("%w: %s is %s", ErrBadTransition, jobID, job.State)
		}
		job.State = string(engine.StateFailed)
		job.FinishedAt = time.Now().UnixMilli()
		job.Attempts++
		job.FailedReason = reason
		return nil
	})
}

// retry moves a failed job back to waiting.
func (q *Queue) retry(ctx context.Context, jobID string) error {
	return q.transition(ctx, jobID, engine.EventWaiting, func(job *api.Job) error {
		if engine.State(job.State) != engine.StateFailed {
			return fmt.Errorf("%w: %s is %s", ErrBadTransition, jobID, job.State)
		}
		job.State = string(engine.StateWaiting)
		job.FinishedAt = 0
		return nil
	})
}

// remove deletes one job, its hash, and its list entry.
func (q *Queue) remove(ctx context.Context, jobID string) error {
	job, err := q.Job(ctx, jobID)
	if err != nil {
		return err
	}
	return q.deleteJob(ctx, jobID, engine.State(job.Info().State))
}

func (q *Queue) deleteJob(ctx context.Context, jobID string, state engine.State) error {
	pipe := q.rdb.TxPipeline()
	pipe.LRem(ctx, q.keys.stateList(q.name, state), 0, jobID)
	pipe.Del(ctx, q.keys.job(q.name, jobID))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisq: delete job: %w", err)
	}
	q.publish(ctx, engine.EventRemoved, jobID)
	return nil
}

// transition rewrites a job hash and moves its id between state lists.
func (q *Queue) transition(ctx context.Context, jobID string, ev engine.EventType, mutate func(*api.Job) error) error {
	current, err := q.Job(ctx, jobID)
	if err != nil {
		return err
	}
	job := current.Info()
	oldState := engine.State(job.State)
	if err := mutate(&job); err != nil {
		return err
	}

	pipe := q.rdb.TxPipeline()
	pipe.HSet(ctx, q.keys.job(q.name, jobID), hashFromJob(job))
	if newState := engine.State(job.State); newState != oldState {
		pipe.LRem(ctx, q.keys.stateList(q.name, oldState), 0, jobID)
		pipe.LPush(ctx, q.keys.stateList(q.name, newState), jobID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisq: transition: %w", err)
	}

	q.publish(ctx, ev, jobID)
	return nil
}

func (q *Queue) publish(ctx context.Context, ev engine.EventType, jobID string) {
	payload, err := json.Marshal(eventMessage{Type: ev, JobID: jobID})
	if err != nil {
		return
	}
	if err := q.rdb.Publish(ctx, q.keys.events(q.name), payload).Err(); err != nil {
		q.logger.Warn("event publish failed", log.Str("job_id", jobID), log.Err(err))
	}
}

var _ engine.Queue = (*Queue)(nil)
