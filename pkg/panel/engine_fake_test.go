package panel

import (
	"context"
	"time"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
)

// In-memory engine fakes for handler and fan-out tests. Calls that matter to
// the route contracts are recorded so tests can assert exactly what reached
// the engine.

type fakeJob struct {
	info     api.Job
	state    engine.State
	retries  int
	removals int
	retryErr error
}

func (j *fakeJob) ID() string    { return j.info.ID }
func (j *fakeJob) Info() api.Job { return j.info }

func (j *fakeJob) State(ctx context.Context) (engine.State, error) {
	return j.state, nil
}

func (j *fakeJob) IsFailed(ctx context.Context) (bool, error) {
	return j.state == engine.StateFailed, nil
}

func (j *fakeJob) Retry(ctx context.Context) error {
	j.retries++
	return j.retryErr
}

func (j *fakeJob) Remove(ctx context.Context) error {
	j.removals++
	return nil
}

type jobsCall struct {
	states []engine.State
	start  int64
	end    int64
}

type cleanCall struct {
	grace time.Duration
	state engine.State
}

type fakeQueue struct {
	name   string
	counts engine.Counts
	list   []*fakeJob
	byID   map[string]*fakeJob
	events chan engine.Event

	jobsCalls  []jobsCall
	cleanCalls []cleanCall
	lookups    int
}

func newFakeQueue(name string, jobs ...*fakeJob) *fakeQueue {
	q := &fakeQueue{
		name:   name,
		list:   jobs,
		byID:   map[string]*fakeJob{},
		events: make(chan engine.Event, 16),
	}
	for _, j := range jobs {
		q.byID[j.info.ID] = j
	}
	return q
}

func (q *fakeQueue) Name() string { return q.name }

func (q *fakeQueue) Counts(ctx context.Context) (engine.Counts, error) {
	return q.counts, nil
}

func (q *fakeQueue) Jobs(ctx context.Context, states []engine.State, start, end int64) ([]engine.Job, error) {
	q.jobsCalls = append(q.jobsCalls, jobsCall{states: states, start: start, end: end})
	jobs := make([]engine.Job, 0, len(q.list))
	for _, j := range q.list {
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (q *fakeQueue) Job(ctx context.Context, id string) (engine.Job, error) {
	q.lookups++
	j, ok := q.byID[id]
	if !ok {
		return nil, engine.ErrJobNotFound
	}
	return j, nil
}

func (q *fakeQueue) Clean(ctx context.Context, grace time.Duration, state engine.State) error {
	q.cleanCalls = append(q.cleanCalls, cleanCall{grace: grace, state: state})
	return nil
}

func (q *fakeQueue) Events(ctx context.Context) (<-chan engine.Event, error) {
	return q.events, nil
}

type fakeEngine struct {
	queues []*fakeQueue
}

func (e *fakeEngine) Queues() []engine.Queue {
	queues := make([]engine.Queue, 0, len(e.queues))
	for _, q := range e.queues {
		queues = append(queues, q)
	}
	return queues
}

func (e *fakeEngine) Queue(name string) (engine.Queue, bool) {
	for _, q := range e.queues {
		if q.name == name {
			return q, true
		}
	}
	return nil, false
}

func (e *fakeEngine) Close() error { return nil }
