package panel

import (
	"net/url"

	"github.com/kelp404/bull-admin-panel/pkg/engine"
)

// Query validation for the job endpoints. A nil result means the query is
// valid; otherwise the map names each failing field, and is carried as the
// error's extra detail.

func validateJobsSearch(q url.Values) map[string]string {
	problems := map[string]string{}
	if v := q.Get("index"); v != "" && !isDigits(v) {
		problems["index"] = "must be a non-negative integer"
	}
	if v := q.Get("size"); v != "" && !isDigits(v) {
		problems["size"] = "must be a non-negative integer"
	}
	if v := q.Get("state"); v != "" && !engine.ValidState(engine.State(v)) {
		problems["state"] = "unknown job state"
	}
	if len(problems) == 0 {
		return nil
	}
	return problems
}

func validateClean(q url.Values) map[string]string {
	state := engine.State(q.Get("state"))
	if state == engine.StateCompleted || state == engine.StateFailed {
		return nil
	}
	return map[string]string{"state": "must be completed or failed"}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
