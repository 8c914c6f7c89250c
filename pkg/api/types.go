package api

import "encoding/json"

// Job is the point-in-time snapshot of a queue job carried in responses and
// notifications. Removal notifications carry only ID (and Queue); the job
// itself is already gone.
type Job struct {
	ID           string          `json:"id"`
	Queue        string          `json:"queue,omitempty"`
	Name         string          `json:"name,omitempty"`
	State        string          `json:"state,omitempty"`
	Data         json.RawMessage `json:"data,omitempty"`
	Progress     float64         `json:"progress,omitempty"`
	Attempts     int             `json:"attempts,omitempty"`
	CreatedAt    int64           `json:"createdAt,omitempty"`
	ProcessedAt  int64           `json:"processedAt,omitempty"`
	FinishedAt   int64           `json:"finishedAt,omitempty"`
	FailedReason string          `json:"failedReason,omitempty"`
	ReturnValue  json.RawMessage `json:"returnValue,omitempty"`
}

// QueueInfo is one element of the GET /queues response.
type QueueInfo struct {
	Name string `json:"name"`
}

// PageList is a single page of jobs with pagination bookkeeping.
type PageList struct {
	Index int64 `json:"index"`
	Size  int64 `json:"size"`
	Total int64 `json:"total"`
	Items []Job `json:"items"`
}

// Counts is the POST /queues/:queueName/jobs/_count response body.
type Counts struct {
	Waiting   int64 `json:"waiting"`
	Active    int64 `json:"active"`
	Completed int64 `json:"completed"`
	Failed    int64 `json:"failed"`
}
