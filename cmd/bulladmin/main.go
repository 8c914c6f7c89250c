package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	clientcmd "github.com/kelp404/bull-admin-panel/internal/cmd/client"
	seedcmd "github.com/kelp404/bull-admin-panel/internal/cmd/seed"
	serverrun "github.com/kelp404/bull-admin-panel/internal/cmd/server"
	cfgpkg "github.com/kelp404/bull-admin-panel/internal/config"
	pebblestore "github.com/kelp404/bull-admin-panel/internal/storage/pebble"
	logpkg "github.com/kelp404/bull-admin-panel/pkg/log"
)

func main() {
	// Respect BULL_ADMIN_LOG_LEVEL for CLI output; the server rebuilds its
	// own logger from the resolved config.
	level := os.Getenv("BULL_ADMIN_LOG_LEVEL")
	parsed, err := logpkg.ParseLevel(level)
	if err != nil || level == "" {
		parsed = logpkg.InfoLevel
	}
	logger := logpkg.NewLogger(
		logpkg.WithLevel(parsed),
		logpkg.WithFormatter(&logpkg.TextFormatter{}),
		logpkg.WithOutput(logpkg.NewConsoleOutput()),
	)
	logpkg.RedirectStdLog(logger)

	rootCmd := &cobra.Command{
		Use:   "bulladmin",
		Short: "bull-admin-panel CLI",
		Long:  "bull-admin-panel serves a realtime job-queue admin API over websocket. This CLI manages the server and queries a running panel.",
	}

	rootCmd.AddCommand(newServerCommand())
	rootCmd.AddCommand(clientcmd.NewQueuesCommand())
	rootCmd.AddCommand(clientcmd.NewJobsCommand())
	rootCmd.AddCommand(clientcmd.NewTailCommand())
	rootCmd.AddCommand(seedcmd.NewCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServerCommand() *cobra.Command {
	serverCmd := &cobra.Command{Use: "server", Short: "Server commands"}
	serverStartCmd := &cobra.Command{
		Use:     "start",
		Short:   "Start the panel server",
		Aliases: []string{"run"},
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			addr, _ := cmd.Flags().GetString("addr")
			basePath, _ := cmd.Flags().GetString("base-path")
			engineName, _ := cmd.Flags().GetString("engine")
			dataDir, _ := cmd.Flags().GetString("data-dir")
			queues, _ := cmd.Flags().GetStringSlice("queues")
			redisAddr, _ := cmd.Flags().GetString("redis-addr")
			fsyncMode, _ := cmd.Flags().GetString("fsync")
			logLevel, _ := cmd.Flags().GetString("log-level")
			logFormat, _ := cmd.Flags().GetString("log-format")
			debug, _ := cmd.Flags().GetBool("debug")

			mode := pebblestore.FsyncModeAlways
			switch fsyncMode {
			case "never":
				mode = pebblestore.FsyncModeNever
			case "interval":
				mode = pebblestore.FsyncModeInterval
			case "always":
				mode = pebblestore.FsyncModeAlways
			default:
				return fmt.Errorf("invalid --fsync; use always|interval|never")
			}

			cfg := cfgpkg.Default()
			if configPath != "" {
				loaded, err := cfgpkg.Load(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfgpkg.FromEnv(&cfg)

			// Flags win over file and environment.
			if addr != "" {
				cfg.Addr = addr
			}
			if basePath != "" {
				cfg.BasePath = basePath
			}
			if engineName != "" {
				cfg.Engine = engineName
			}
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			if len(queues) > 0 {
				cfg.Queues = queues
			}
			if redisAddr != "" {
				cfg.Redis.Addr = redisAddr
			}
			if logLevel != "" {
				cfg.Log.Level = logLevel
			}
			if logFormat != "" {
				cfg.Log.Format = logFormat
			}
			if debug {
				cfg.Debug = true
			}

			if err := serverrun.Run(cmd.Context(), serverrun.Options{
				Config: cfg,
				Fsync:  mode,
			}); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}
	serverStartCmd.Flags().String("config", "", "path to a JSON config file")
	serverStartCmd.Flags().String("addr", "", "HTTP listen address (default :8080)")
	serverStartCmd.Flags().String("base-path", "", "websocket upgrade path (default /bull-admin)")
	serverStartCmd.Flags().String("engine", "", "queue backend (embedded|redis)")
	serverStartCmd.Flags().String("data-dir", "", "embedded store directory (default: platform data dir)")
	serverStartCmd.Flags().StringSlice("queues", nil, "queues to monitor")
	serverStartCmd.Flags().String("redis-addr", "", "redis server address")
	serverStartCmd.Flags().String("fsync", "always", "embedded store durability (always|interval|never)")
	serverStartCmd.Flags().String("log-level", "", "log level (debug|info|warn|error)")
	serverStartCmd.Flags().String("log-format", "", "log format (text|json)")
	serverStartCmd.Flags().Bool("debug", false, "include stack traces in error responses")
	serverCmd.AddCommand(serverStartCmd)
	return serverCmd
}
