package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kelp404/bull-admin-panel/pkg/api"
)

// Typed wrappers over the route surface. All are foreground requests except
// where noted; embedders needing background refreshes use DoBackground with
// the same paths.

// JobsQuery narrows and pages a job listing.
type JobsQuery struct {
	Index  int64
	Size   int64
	State  string
	Filter string

	// Background issues the listing without raising the busy flag.
	Background bool
}

// Queues lists the monitored queue names.
func (c *Client) Queues(ctx context.Context) ([]api.QueueInfo, error) {
	res, err := c.Do(ctx, "GET", "/queues", nil)
	if err != nil {
		return nil, err
	}
	var queues []api.QueueInfo
	if err := json.Unmarshal(res.Body, &queues); err != nil {
		return nil, fmt.Errorf("client: decode queues: %w", err)
	}
	return queues, nil
}

// Jobs fetches one page of jobs.
func (c *Client) Jobs(ctx context.Context, queue string, q JobsQuery) (*api.PageList, error) {
	values := url.Values{}
	if q.Index > 0 {
		values.Set("index", fmt.Sprintf("%d", q.Index))
	}
	if q.Size > 0 {
		values.Set("size", fmt.Sprintf("%d", q.Size))
	}
	if q.State != "" {
		values.Set("state", q.State)
	}
	if q.Filter != "" {
		values.Set("filter", q.Filter)
	}
	path := fmt.Sprintf("/queues/%s/jobs", url.PathEscape(queue))
	if len(values) > 0 {
		path += "?" + values.Encode()
	}

	do := c.Do
	if q.Background {
		do = c.DoBackground
	}
	res, err := do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	var page api.PageList
	if err := json.Unmarshal(res.Body, &page); err != nil {
		return nil, fmt.Errorf("client: decode job page: %w", err)
	}
	return &page, nil
}

// CountJobs returns per-state totals for one queue.
func (c *Client) CountJobs(ctx context.Context, queue string) (*api.Counts, error) {
	path := fmt.Sprintf("/queues/%s/jobs/_count", url.PathEscape(queue))
	res, err := c.Do(ctx, "POST", path, nil)
	if err != nil {
		return nil, err
	}
	var counts api.Counts
	if err := json.Unmarshal(res.Body, &counts); err != nil {
		return nil, fmt.Errorf("client: decode counts: %w", err)
	}
	return &counts, nil
}

// CleanJobs purges all jobs of a terminal state (completed or failed).
func (c *Client) CleanJobs(ctx context.Context, queue, state string) error {
	path := fmt.Sprintf("/queues/%s/jobs/_clean?state=%s", url.PathEscape(queue), url.QueryEscape(state))
	_, err := c.Do(ctx, "POST", path, nil)
	return err
}

// Job fetches one job with its authoritative current state.
func (c *Client) Job(ctx context.Context, queue, jobID string) (*api.Job, error) {
	path := fmt.Sprintf("/queues/%s/jobs/%s", url.PathEscape(queue), url.PathEscape(jobID))
	res, err := c.Do(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}
	var job api.Job
	if err := json.Unmarshal(res.Body, &job); err != nil {
		return nil, fmt.Errorf("client: decode job: %w", err)
	}
	return &job, nil
}

// RetryJob moves a failed job back to waiting.
func (c *Client) RetryJob(ctx context.Context, queue, jobID string) error {
	path := fmt.Sprintf("/queues/%s/jobs/%s/_retry", url.PathEscape(queue), url.PathEscape(jobID))
	_, err := c.Do(ctx, "POST", path, nil)
	return err
}

// RemoveJob deletes a job from its queue.
func (c *Client) RemoveJob(ctx context.Context, queue, jobID string) error {
	path := fmt.Sprintf("/queues/%s/jobs/%s", url.PathEscape(queue), url.PathEscape(jobID))
	_, err := c.Do(ctx, "DELETE", path, nil)
	return err
}
