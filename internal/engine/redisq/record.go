package redisq

import (
	"encoding/json"
	"strconv"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
)

// Hash field names for job records.
const (
	fieldID           = "id"
	fieldName         = "name"
	fieldState        = "state"
	fieldData         = "data"
	fieldProgress     = "progress"
	fieldAttempts     = "attempts"
	fieldCreatedAt    = "createdAt"
	fieldProcessedAt  = "processedAt"
	fieldFinishedAt   = "finishedAt"
	fieldFailedReason = "failedReason"
	fieldReturnValue  = "returnValue"
)

// hashFromJob flattens a job snapshot into HSET arguments. Zero-valued
// numeric fields are written anyway so transitions can overwrite stale
// values.
func hashFromJob(job api.Job) map[string]any {
	return map[string]any{
		fieldID:           job.ID,
		fieldName:         job.Name,
		fieldState:        job.State,
		fieldData:         string(job.Data),
		fieldProgress:     job.Progress,
		fieldAttempts:     job.Attempts,
		fieldCreatedAt:    job.CreatedAt,
		fieldProcessedAt:  job.ProcessedAt,
		fieldFinishedAt:   job.FinishedAt,
		fieldFailedReason: job.FailedReason,
		fieldReturnValue:  string(job.ReturnValue),
	}
}

// jobFromHash rebuilds a job snapshot from HGETALL output. Missing or
// malformed numeric fields read as zero.
func jobFromHash(queue string, h map[string]string) api.Job {
	job := api.Job{
		ID:           h[fieldID],
		Queue:        queue,
		Name:         h[fieldName],
		State:        h[fieldState],
		Progress:     parseFloat(h[fieldProgress]),
		Attempts:     int(parseInt(h[fieldAttempts])),
		CreatedAt:    parseInt(h[fieldCreatedAt]),
		ProcessedAt:  parseInt(h[fieldProcessedAt]),
		FinishedAt:   parseInt(h[fieldFinishedAt]),
		FailedReason: h[fieldFailedReason],
	}
	if v := h[fieldData]; v != "" {
		job.Data = json.RawMessage(v)
	}
	if v := h[fieldReturnValue]; v != "" {
		job.ReturnValue = json.RawMessage(v)
	}
	return job
}

func parseInt(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// eventMessage is the pub/sub payload for one lifecycle event.
type eventMessage struct {
	Type  engine.EventType `json:"type"`
	JobID string           `json:"jobId"`
}
