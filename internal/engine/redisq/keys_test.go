package redisq

import (
	"testing"

	"github.com/kelp404/bull-admin-panel/pkg/engine"
)

func TestKeyLayout(t *testing.T) {
	k := keys{prefix: "bull-admin"}

	if got := k.registry(); got != "bull-admin:queues" {
		t.Fatalf("registry = %q", got)
	}
	if got := k.stateList("mail", engine.StateFailed); got != "bull-admin:mail:failed" {
		t.Fatalf("state list = %q", got)
	}
	if got := k.job("mail", "42"); got != "bull-admin:mail:job:42" {
		t.Fatalf("job = %q", got)
	}
	if got := k.events("mail"); got != "bull-admin:mail:events" {
		t.Fatalf("events = %q", got)
	}
}

func TestHashRoundTripKeepsRawJSON(t *testing.T) {
	job := jobFromHash("mail", map[string]string{
		"id":           "42",
		"name":         "send",
		"state":        "failed",
		"data":         `{"to":"a@b"}`,
		"progress":     "37.5",
		"attempts":     "3",
		"createdAt":    "1700000000000",
		"finishedAt":   "1700000100000",
		"failedReason": "smtp unreachable",
	})

	if job.ID != "42" || job.Queue != "mail" || job.State != "failed" {
		t.Fatalf("job = %+v", job)
	}
	if job.Progress != 37.5 || job.Attempts != 3 {
		t.Fatalf("job = %+v", job)
	}
	if string(job.Data) != `{"to":"a@b"}` {
		t.Fatalf("data = %s", job.Data)
	}

	h := hashFromJob(job)
	if h["state"] != "failed" || h["data"] != `{"to":"a@b"}` {
		t.Fatalf("hash = %v", h)
	}
}

func TestHashToleratesMissingFields(t *testing.T) {
	job := jobFromHash("mail", map[string]string{"id": "7", "state": "waiting", "attempts": "x"})
	if job.ID != "7" || job.Attempts != 0 || job.Data != nil {
		t.Fatalf("job = %+v", job)
	}
}
