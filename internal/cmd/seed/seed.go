// Package seed provides the `seed` command, a demo producer that pushes
// jobs through their lifecycle so the panel has something to show.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	cfgpkg "github.com/kelp404/bull-admin-panel/internal/config"
	"github.com/kelp404/bull-admin-panel/internal/engine/embedded"
	"github.com/kelp404/bull-admin-panel/internal/engine/redisq"
	logpkg "github.com/kelp404/bull-admin-panel/pkg/log"
)

// producer is the write-side surface both engines expose.
type producer interface {
	Enqueue(ctx context.Context, name string, data json.RawMessage) (string, error)
	MarkActive(ctx context.Context, jobID string) error
	Complete(ctx context.Context, jobID string, returnValue json.RawMessage) error
	Fail(ctx context.Context, jobID, reason string) error
}

// NewCommand constructs the `seed` command.
//
// With the embedded engine the command opens the store directly, so it must
// not run while a server holds the same data directory. The redis engine has
// no such restriction.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Enqueue demo jobs and walk some through their lifecycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			engineName, _ := cmd.Flags().GetString("engine")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			redisAddr, _ := cmd.Flags().GetString("redis-addr")
			redisPrefix, _ := cmd.Flags().GetString("redis-prefix")
			queue, _ := cmd.Flags().GetString("queue")
			count, _ := cmd.Flags().GetInt("count")

			ctx := cmd.Context()
			logger := logpkg.NewLogger(logpkg.WithOutput(logpkg.NewWriterOutput(io.Discard)))

			var (
				prod     producer
				closeEng func() error
			)
			switch engineName {
			case cfgpkg.EngineEmbedded:
				if dataDir == "" {
					dataDir = cfgpkg.DefaultDataDir()
				}
				eng, err := embedded.Open(embedded.Options{
					DataDir: dataDir,
					Queues:  []string{queue},
					Logger:  logger,
				})
				if err != nil {
					return err
				}
				p, ok := eng.Producer(queue)
				if !ok {
					_ = eng.Close()
					return fmt.Errorf("queue %q not found", queue)
				}
				prod, closeEng = p, eng.Close
			case cfgpkg.EngineRedis:
				eng, err := redisq.Open(ctx, redisq.Options{
					Addr:   redisAddr,
					Prefix: redisPrefix,
					Queues: []string{queue},
					Logger: logger,
				})
				if err != nil {
					return err
				}
				p, ok := eng.Producer(queue)
				if !ok {
					_ = eng.Close()
					return fmt.Errorf("queue %q not found", queue)
				}
				prod, closeEng = p, eng.Close
			default:
				return fmt.Errorf("invalid --engine; use embedded|redis")
			}
			defer func() { _ = closeEng() }()

			return seedJobs(ctx, prod, queue, count)
		},
	}
	cmd.Flags().String("engine", cfgpkg.EngineEmbedded, "queue backend (embedded|redis)")
	cmd.Flags().String("data-dir", "", "embedded store directory (default: platform data dir)")
	cmd.Flags().String("redis-addr", "127.0.0.1:6379", "redis server address")
	cmd.Flags().String("redis-prefix", redisq.DefaultPrefix, "redis key prefix")
	cmd.Flags().String("queue", "default", "queue to seed")
	cmd.Flags().Int("count", 10, "number of jobs to enqueue")
	return cmd
}

// seedJobs enqueues count jobs: every third completes, every fifth fails,
// the rest stay waiting.
func seedJobs(ctx context.Context, prod producer, queue string, count int) error {
	for i := 0; i < count; i++ {
		data, err := json.Marshal(map[string]any{"to": fmt.Sprintf("user-%d@example.com", i)})
		if err != nil {
			return err
		}
		jobID, err := prod.Enqueue(ctx, "send", data)
		if err != nil {
			return err
		}
		switch {
		case i%5 == 0 && i > 0:
			if err := prod.MarkActive(ctx, jobID); err != nil {
				return err
			}
			if err := prod.Fail(ctx, jobID, "smtp connection refused"); err != nil {
				return err
			}
		case i%3 == 0 && i > 0:
			if err := prod.MarkActive(ctx, jobID); err != nil {
				return err
			}
			if err := prod.Complete(ctx, jobID, json.RawMessage(`{"delivered":true}`)); err != nil {
				return err
			}
		}
	}
	fmt.Printf("seeded %d jobs into %s\n", count, queue)
	return nil
}
