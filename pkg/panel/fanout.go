package panel

import (
	"context"
	"errors"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/log"
)

// broadcaster is the pool surface fan-out needs: membership count and
// one-to-all envelope delivery.
type broadcaster interface {
	Len() int
	Broadcast(event string, body any) error
}

// Fanout translates queue lifecycle events into broadcast notifications.
// One goroutine per queue consumes that queue's event channel, so the
// engine's emission order for a single queue is preserved through this layer.
type Fanout struct {
	eng    engine.Engine
	hub    broadcaster
	logger log.Logger
}

// NewFanout creates a fan-out bound to a connection pool.
func NewFanout(eng engine.Engine, hub broadcaster, logger log.Logger) *Fanout {
	return &Fanout{eng: eng, hub: hub, logger: logger}
}

// Run subscribes to every queue's lifecycle events and returns. Consumption
// stops when ctx is cancelled or the engine closes its channels.
func (f *Fanout) Run(ctx context.Context) error {
	for _, q := range f.eng.Queues() {
		ch, err := q.Events(ctx)
		if err != nil {
			return err
		}
		go f.consume(ctx, q, ch)
	}
	return nil
}

func (f *Fanout) consume(ctx context.Context, q engine.Queue, ch <-chan engine.Event) {
	for ev := range ch {
		f.handle(ctx, q, ev)
	}
}

func (f *Fanout) handle(ctx context.Context, q engine.Queue, ev engine.Event) {
	// Nobody is listening; skip the engine lookup entirely.
	if f.hub.Len() == 0 {
		return
	}

	var body api.Job
	if ev.Type == engine.EventRemoved {
		// The job is gone; synthesize a minimal snapshot with only the id.
		body = api.Job{ID: ev.JobID, Queue: q.Name()}
	} else {
		job, err := q.Job(ctx, ev.JobID)
		if errors.Is(err, engine.ErrJobNotFound) {
			// Raced with a removal; a phantom job must not reach the UI.
			f.logger.Debug("dropping notification for vanished job",
				log.Str("queue", q.Name()),
				log.Str("job_id", ev.JobID),
				log.Str("event", string(ev.Type)))
			return
		}
		if err != nil {
			f.logger.Warn("job lookup failed during fan-out",
				log.Str("queue", q.Name()),
				log.Str("job_id", ev.JobID),
				log.Err(err))
			return
		}
		body = job.Info()
		body.Queue = q.Name()
	}

	if err := f.hub.Broadcast(ev.Type.NotificationEvent(), body); err != nil {
		f.logger.Warn("notification broadcast failed", log.Err(err))
	}
}
