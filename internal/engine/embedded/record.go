package embedded

import (
	"encoding/json"

	"github.com/kelp404/bull-admin-panel/pkg/api"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
)

// jobRecord is the stored form of one job. The id doubles as the listing sort
// key, so records carry no separate sequence number.
type jobRecord struct {
	ID           string          `json:"id"`
	Name         string          `json:"name,omitempty"`
	State        engine.State    `json:"state"`
	Data         json.RawMessage `json:"data,omitempty"`
	Progress     float64         `json:"progress,omitempty"`
	Attempts     int             `json:"attempts,omitempty"`
	CreatedAt    int64           `json:"createdAt"`
	ProcessedAt  int64           `json:"processedAt,omitempty"`
	FinishedAt   int64           `json:"finishedAt,omitempty"`
	FailedReason string          `json:"failedReason,omitempty"`
	ReturnValue  json.RawMessage `json:"returnValue,omitempty"`
}

func encodeRecord(rec *jobRecord) ([]byte, error) {
	return json.Marshal(rec)
}

func decodeRecord(b []byte) (*jobRecord, error) {
	var rec jobRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *jobRecord) toAPI(queue string) api.Job {
	return api.Job{
		ID:           r.ID,
		Queue:        queue,
		Name:         r.Name,
		State:        string(r.State),
		Data:         r.Data,
		Progress:     r.Progress,
		Attempts:     r.Attempts,
		CreatedAt:    r.CreatedAt,
		ProcessedAt:  r.ProcessedAt,
		FinishedAt:   r.FinishedAt,
		FailedReason: r.FailedReason,
		ReturnValue:  r.ReturnValue,
	}
}
