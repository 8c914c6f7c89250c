package panel

import (
	"errors"
	"strconv"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
)

const (
	defaultPageIndex = 0
	defaultPageSize  = 20
)

// controller implements the socket route surface against the queue engine.
type controller struct {
	eng engine.Engine
}

func (c *controller) register(rt *Router) {
	rt.Get("/queues", c.getQueues)
	rt.Get("/queues/:queueName/jobs", c.getJobs)
	rt.Post("/queues/:queueName/jobs/_count", c.countAllStateJobs)
	rt.Post("/queues/:queueName/jobs/_clean", c.cleanJobs)
	rt.Get("/queues/:queueName/jobs/:jobId", c.getJob)
	rt.Post("/queues/:queueName/jobs/:jobId/_retry", c.retryJob)
	rt.Delete("/queues/:queueName/jobs/:jobId", c.deleteJob)
}

func (c *controller) queue(name string) (engine.Queue, error) {
	q, ok := c.eng.Queue(name)
	if !ok {
		return nil, NotFound("not found queue %s", name)
	}
	return q, nil
}

// getQueues lists the monitored queue names.
// GET /queues -> 200: [{"name": string}]
func (c *controller) getQueues(req *Request, res *Response) error {
	queues := c.eng.Queues()
	list := make([]api.QueueInfo, 0, len(queues))
	for _, q := range queues {
		list = append(list, api.QueueInfo{Name: q.Name()})
	}
	return res.JSON(list)
}

// countAllStateJobs returns per-state totals for one queue.
// POST /queues/:queueName/jobs/_count -> 200: {waiting, active, completed, failed}
func (c *controller) countAllStateJobs(req *Request, res *Response) error {
	q, err := c.queue(req.Params["queueName"])
	if err != nil {
		return err
	}
	counts, err := q.Counts(req.Context())
	if err != nil {
		return err
	}
	return res.JSON(api.Counts{
		Waiting:   counts.Waiting,
		Active:    counts.Active,
		Completed: counts.Completed,
		Failed:    counts.Failed,
	})
}

// getJobs returns one page of jobs, optionally restricted to one state and
// filtered by a CEL expression.
// GET /queues/:queueName/jobs?index=&size=&state=&filter= -> 200: PageList
func (c *controller) getJobs(req *Request, res *Response) error {
	if problems := validateJobsSearch(req.Query); problems != nil {
		return BadRequest("form validation failed.", problems)
	}
	q, err := c.queue(req.Params["queueName"])
	if err != nil {
		return err
	}

	filter, err := newJobFilter(req.Query.Get("filter"))
	if err != nil {
		return BadRequest("form validation failed.", map[string]string{"filter": err.Error()})
	}

	index := queryInt(req, "index", defaultPageIndex)
	size := queryInt(req, "size", defaultPageSize)

	stateParam := engine.State(req.Query.Get("state"))
	var states []engine.State
	if stateParam != "" {
		states = []engine.State{stateParam}
	}

	ctx := req.Context()
	jobs, err := q.Jobs(ctx, states, index*size, (index+1)*size-1)
	if err != nil {
		return err
	}
	counts, err := q.Counts(ctx)
	if err != nil {
		return err
	}

	var total int64
	if stateParam != "" {
		total = counts.Of(stateParam)
	} else {
		total = counts.Waiting + counts.Active + counts.Completed + counts.Failed
	}

	items := make([]api.Job, 0, len(jobs))
	for _, job := range jobs {
		if job == nil {
			continue
		}
		info := job.Info()
		if filter.Eval(info) {
			items = append(items, info)
		}
	}

	return res.JSON(api.PageList{Index: index, Size: size, Total: total, Items: items})
}

// cleanJobs purges jobs of a terminal state.
// POST /queues/:queueName/jobs/_clean?state=completed|failed -> 204
func (c *controller) cleanJobs(req *Request, res *Response) error {
	if problems := validateClean(req.Query); problems != nil {
		return BadRequest("form validation failed.", problems)
	}
	q, err := c.queue(req.Params["queueName"])
	if err != nil {
		return err
	}
	if err := q.Clean(req.Context(), 0, engine.State(req.Query.Get("state"))); err != nil {
		return err
	}
	return res.JSONStatus(204, struct{}{})
}

// getJob returns a single job with its authoritative current state.
// GET /queues/:queueName/jobs/:jobId -> 200: Job
func (c *controller) getJob(req *Request, res *Response) error {
	q, err := c.queue(req.Params["queueName"])
	if err != nil {
		return err
	}
	jobID := req.Params["jobId"]
	ctx := req.Context()
	job, err := q.Job(ctx, jobID)
	if err != nil {
		return jobError(err, jobID)
	}
	state, err := job.State(ctx)
	if err != nil {
		return err
	}
	info := job.Info()
	info.State = string(state)
	return res.JSON(info)
}

// retryJob moves a failed job back to waiting. Only failed jobs may be
// retried; anything else is reported as not found.
// POST /queues/:queueName/jobs/:jobId/_retry -> 204
func (c *controller) retryJob(req *Request, res *Response) error {
	q, err := c.queue(req.Params["queueName"])
	if err != nil {
		return err
	}
	jobID := req.Params["jobId"]
	ctx := req.Context()
	job, err := q.Job(ctx, jobID)
	if err != nil {
		return jobError(err, jobID)
	}
	failed, err := job.IsFailed(ctx)
	if err != nil {
		return err
	}
	if !failed {
		return NotFound("not found failed job %s", jobID)
	}
	if err := job.Retry(ctx); err != nil {
		return err
	}
	return res.JSONStatus(204, struct{}{})
}

// deleteJob removes a job from its queue.
// DELETE /queues/:queueName/jobs/:jobId -> 204
func (c *controller) deleteJob(req *Request, res *Response) error {
	q, err := c.queue(req.Params["queueName"])
	if err != nil {
		return err
	}
	jobID := req.Params["jobId"]
	ctx := req.Context()
	job, err := q.Job(ctx, jobID)
	if err != nil {
		return jobError(err, jobID)
	}
	if err := job.Remove(ctx); err != nil {
		return err
	}
	return res.JSONStatus(204, struct{}{})
}

func jobError(err error, jobID string) error {
	if errors.Is(err, engine.ErrJobNotFound) {
		return NotFound("not found job %s", jobID)
	}
	return err
}

func queryInt(req *Request, key string, def int64) int64 {
	v := req.Query.Get(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}
