package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	clientpkg "github.com/kelp404/bull-admin-panel/pkg/client"
	logpkg "github.com/kelp404/bull-admin-panel/pkg/log"
)

// connectTimeout bounds the initial handshake for one-shot CLI commands. The
// client itself retries forever; a CLI invocation should not.
const connectTimeout = 10 * time.Second

// apiURL returns the panel websocket endpoint from BULL_ADMIN_URL or a
// default matching the server defaults.
func apiURL() string {
	if v := os.Getenv("BULL_ADMIN_URL"); v != "" {
		return v
	}
	return "ws://127.0.0.1:8080/bull-admin"
}

// withClient connects to the panel, runs fn, and tears the connection down.
func withClient(ctx context.Context, fn func(ctx context.Context, c *clientpkg.Client) error) error {
	c := clientpkg.New(clientpkg.Options{
		URL:    apiURL(),
		Logger: logpkg.NewLogger(logpkg.WithOutput(logpkg.NewWriterOutput(io.Discard))),
	})
	c.Connect(ctx)
	defer func() { _ = c.Close() }()

	wctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()
	if err := c.WaitConnected(wctx); err != nil {
		return fmt.Errorf("connect %s: %w", apiURL(), err)
	}
	return fn(ctx, c)
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
