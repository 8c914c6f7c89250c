package redisq

import (
	"context"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
)

// queueJob is one job snapshot bound to its queue. Info serves the snapshot
// taken at fetch time; State and IsFailed re-read the hash.
type queueJob struct {
	q    *Queue
	info api.Job
}

func (j *queueJob) ID() string { return j.info.ID }

func (j *queueJob) Info() api.Job { return j.info }

func (j *queueJob) State(ctx context.Context) (engine.State, error) {
	current, err := j.q.Job(ctx, j.info.ID)
	if err != nil {
		return "", err
	}
	return engine.State(current.Info().State), nil
}

func (j *queueJob) IsFailed(ctx context.Context) (bool, error) {
	state, err := j.State(ctx)
	if err != nil {
		return false, err
	}
	return state == engine.StateFailed, nil
}

func (j *queueJob) Retry(ctx context.Context) error {
	return j.q.retry(ctx, j.info.ID)
}

func (j *queueJob) Remove(ctx context.Context) error {
	return j.q.remove(ctx, j.info.ID)
}

var _ engine.Job = (*queueJob)(nil)
