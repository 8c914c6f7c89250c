package serverrun

import (
	"context"
	"io"
	"testing"
	"time"

	cfgpkg "github.com/kelp404/bull-admin-panel/internal/config"
	pebblestore "github.com/kelp404/bull-admin-panel/internal/storage/pebble"
	logpkg "github.com/kelp404/bull-admin-panel/pkg/log"
)

func TestRunStartsAndShutsDown(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Addr = "127.0.0.1:0"
	cfg.DataDir = t.TempDir()
	cfg.Queues = []string{"mail"}
	cfg.Log.Level = "error"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Run(ctx, Options{Config: cfg, Fsync: pebblestore.FsyncModeNever})
	}()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}

func TestRunRejectsBadConfig(t *testing.T) {
	cfg := cfgpkg.Default()
	cfg.Engine = "postgres"

	if err := Run(context.Background(), Options{Config: cfg}); err == nil {
		t.Fatalf("expected error for unknown engine")
	}
}

func TestOpenEngineUnknown(t *testing.T) {
	logger := logpkg.NewLogger(logpkg.WithOutput(logpkg.NewWriterOutput(io.Discard)))
	cfg := cfgpkg.Default()
	cfg.Engine = "invalid"
	if _, err := openEngine(context.Background(), cfg, pebblestore.FsyncModeNever, logger); err == nil {
		t.Fatalf("expected error")
	}
}
