package embedded

import (
	"context"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
)

// queueJob is one job snapshot bound to its queue. Info serves the snapshot
// taken at fetch time; State and IsFailed re-read the store so admin
// decisions see the current state.
type queueJob struct {
	q   *Queue
	rec jobRecord
}

func (j *queueJob) ID() string { return j.rec.ID }

func (j *queueJob) Info() api.Job { return j.rec.toAPI(j.q.name) }

func (j *queueJob) State(ctx context.Context) (engine.State, error) {
	rec, err := j.q.load(j.rec.ID)
	if err != nil {
		return "", err
	}
	return rec.State, nil
}

func (j *queueJob) IsFailed(ctx context.Context) (bool, error) {
	state, err := j.State(ctx)
	if err != nil {
		return false, err
	}
	return state == engine.StateFailed, nil
}

func (j *queueJob) Retry(ctx context.Context) error {
	return j.q.retry(j.rec.ID)
}

func (j *queueJob) Remove(ctx context.Context) error {
	return j.q.remove(j.rec.ID)
}

var _ engine.Job = (*queueJob)(nil)
