package serverrun

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cfgpkg "github.com/kelp404/bull-admin-panel/internal/config"
	"github.com/kelp404/bull-admin-panel/internal/engine/embedded"
	"github.com/kelp404/bull-admin-panel/internal/engine/redisq"
	httpserver "github.com/kelp404/bull-admin-panel/internal/server/http"
	pebblestore "github.com/kelp404/bull-admin-panel/internal/storage/pebble"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
	logpkg "github.com/kelp404/bull-admin-panel/pkg/log"
	"github.com/kelp404/bull-admin-panel/pkg/panel"
)

// Options carries everything `server start` resolved from flags, environment
// and the optional config file.
type Options struct {
	Config cfgpkg.Config

	// Fsync selects the embedded store durability policy. Ignored by the
	// redis engine.
	Fsync pebblestore.FsyncMode
}

// Run starts the panel HTTP server and blocks until ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	// Be robust to callers that don't pass a signal-aware context. We layer
	// a local signal context over the provided one.
	sctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := logpkg.ApplyConfig(&logpkg.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return err
	}
	// Route stdlib logs (Pebble, net/http) through our logger.
	logpkg.RedirectStdLog(logger)

	eng, err := openEngine(sctx, cfg, opts.Fsync, logger)
	if err != nil {
		return err
	}
	defer func() { _ = eng.Close() }()

	p, err := panel.New(panel.Options{
		BasePath: cfg.BasePath,
		Engine:   eng,
		Logger:   logger,
		Debug:    cfg.Debug,
	})
	if err != nil {
		return err
	}
	if err := p.Start(sctx); err != nil {
		return err
	}
	defer p.Close()

	logger.Info("starting bull-admin-panel",
		logpkg.Str("addr", cfg.Addr),
		logpkg.Str("base_path", p.BasePath()),
		logpkg.Str("engine", cfg.Engine),
	)

	srv := httpserver.New(p, logger)
	if err := srv.ListenAndServe(sctx, cfg.Addr); err != nil && sctx.Err() == nil {
		return err
	}
	return nil
}

func openEngine(ctx context.Context, cfg cfgpkg.Config, fsync pebblestore.FsyncMode, logger logpkg.Logger) (engine.Engine, error) {
	switch cfg.Engine {
	case cfgpkg.EngineEmbedded:
		dataDir := cfg.DataDir
		if dataDir == "" {
			dataDir = cfgpkg.DefaultDataDir()
		}
		return embedded.Open(embedded.Options{
			DataDir: dataDir,
			Queues:  cfg.Queues,
			Fsync:   fsync,
			Logger:  logger,
		})
	case cfgpkg.EngineRedis:
		return redisq.Open(ctx, redisq.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			Queues:   cfg.Queues,
			Logger:   logger,
		})
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}
}
