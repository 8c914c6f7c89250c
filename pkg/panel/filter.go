package panel

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/cel-go/cel"

	"github.com/kelp404/bull-admin-panel/pkg/api"
)

// jobFilter wraps a compiled CEL program evaluated against each job of a
// listing page. When disabled, Eval always returns true.
type jobFilter struct {
	prog    cel.Program
	enabled bool
}

func newJobFilter(expr string) (jobFilter, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return jobFilter{enabled: false}, nil
	}
	env, err := cel.NewEnv(
		cel.Variable("id", cel.StringType),
		cel.Variable("name", cel.StringType),
		cel.Variable("state", cel.StringType),
		cel.Variable("progress", cel.DoubleType),
		cel.Variable("attempts", cel.IntType),
		// Parsed JSON payload (map/list/values) for field filtering
		cel.Variable("data", cel.DynType),
		cel.Variable("failed_reason", cel.StringType),
		cel.Variable("created_at_ms", cel.IntType),
		// Current time in ms for windowed filters
		cel.Variable("now_ms", cel.IntType),
	)
	if err != nil {
		return jobFilter{}, err
	}
	ast, iss := env.Parse(expr)
	if iss != nil && iss.Err() != nil {
		return jobFilter{}, iss.Err()
	}
	checked, iss2 := env.Check(ast)
	if iss2 != nil && iss2.Err() != nil {
		return jobFilter{}, iss2.Err()
	}
	prog, err := env.Program(checked)
	if err != nil {
		return jobFilter{}, err
	}
	return jobFilter{prog: prog, enabled: true}, nil
}

// Eval evaluates the compiled expression against a job snapshot. When
// disabled, returns true. Evaluation errors exclude the job.
func (f jobFilter) Eval(job api.Job) bool {
	if !f.enabled {
		return true
	}
	var data any
	if len(job.Data) > 0 {
		_ = json.Unmarshal(job.Data, &data)
	}
	out, _, err := f.prog.Eval(map[string]any{
		"id":            job.ID,
		"name":          job.Name,
		"state":         job.State,
		"progress":      job.Progress,
		"attempts":      int64(job.Attempts),
		"data":          data,
		"failed_reason": job.FailedReason,
		"created_at_ms": job.CreatedAt,
		"now_ms":        time.Now().UnixMilli(),
	})
	if err != nil {
		return false
	}
	b, ok := out.Value().(bool)
	return ok && b
}
