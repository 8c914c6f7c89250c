package client

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientpkg "github.com/kelp404/bull-admin-panel/pkg/client"
)

// NewQueuesCommand constructs the `queues` command.
func NewQueuesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "queues",
		Short: "List monitored queues",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *clientpkg.Client) error {
				queues, err := c.Queues(ctx)
				if err != nil {
					return err
				}
				return printJSON(queues)
			})
		},
	}
}

// NewJobsCommand constructs the `jobs` command group and subcommands.
func NewJobsCommand() *cobra.Command {
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Inspect and manage jobs in a queue",
	}
	jobsCmd.AddCommand(
		newJobsListCommand(),
		newJobsGetCommand(),
		newJobsCountCommand(),
		newJobsCleanCommand(),
		newJobsRetryCommand(),
		newJobsRemoveCommand(),
	)
	return jobsCmd
}

func newJobsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <queue>",
		Short: "List jobs, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			index, _ := cmd.Flags().GetInt64("index")
			size, _ := cmd.Flags().GetInt64("size")
			state, _ := cmd.Flags().GetString("state")
			filter, _ := cmd.Flags().GetString("filter")
			return withClient(cmd.Context(), func(ctx context.Context, c *clientpkg.Client) error {
				page, err := c.Jobs(ctx, args[0], clientpkg.JobsQuery{
					Index:  index,
					Size:   size,
					State:  state,
					Filter: filter,
				})
				if err != nil {
					return err
				}
				return printJSON(page)
			})
		},
	}
	cmd.Flags().Int64("index", 0, "page index")
	cmd.Flags().Int64("size", 20, "page size")
	cmd.Flags().String("state", "", "job state (waiting|active|completed|failed); empty for all")
	cmd.Flags().String("filter", "", "CEL filter expression, e.g. 'attempts > 3'")
	return cmd
}

func newJobsGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <queue> <job-id>",
		Short: "Show one job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *clientpkg.Client) error {
				job, err := c.Job(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				return printJSON(job)
			})
		},
	}
}

func newJobsCountCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "count <queue>",
		Short: "Show per-state job counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *clientpkg.Client) error {
				counts, err := c.CountJobs(ctx, args[0])
				if err != nil {
					return err
				}
				return printJSON(counts)
			})
		},
	}
}

func newJobsCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean <queue> <state>",
		Short: "Delete finished jobs in a state (completed or failed)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *clientpkg.Client) error {
				if err := c.CleanJobs(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("cleaned %s jobs in %s\n", args[1], args[0])
				return nil
			})
		},
	}
}

func newJobsRetryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "retry <queue> <job-id>",
		Short: "Re-enqueue a failed job",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *clientpkg.Client) error {
				if err := c.RetryJob(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("retried %s\n", args[1])
				return nil
			})
		},
	}
}

func newJobsRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <queue> <job-id>",
		Aliases: []string{"rm", "delete"},
		Short:   "Delete a job",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withClient(cmd.Context(), func(ctx context.Context, c *clientpkg.Client) error {
				if err := c.RemoveJob(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", args[1])
				return nil
			})
		},
	}
}

// NewTailCommand constructs the `tail` command, which prints lifecycle
// notifications until interrupted.
func NewTailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Stream job lifecycle notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			events, _ := cmd.Flags().GetStringSlice("event")
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return withClient(ctx, func(ctx context.Context, c *clientpkg.Client) error {
				for _, event := range events {
					event := event
					c.Subscribe(event, func(body json.RawMessage) {
						line, err := json.Marshal(map[string]any{
							"event": event,
							"job":   json.RawMessage(body),
						})
						if err != nil {
							return
						}
						fmt.Println(string(line))
					})
				}
				<-ctx.Done()
				return nil
			})
		},
	}
	cmd.Flags().StringSlice("event", []string{
		"job-waiting", "job-active", "job-completed", "job-failed", "job-removed",
	}, "events to subscribe to")
	return cmd
}
