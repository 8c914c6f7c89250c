// Package httpserver hosts the admin panel: it mounts the websocket upgrade
// endpoint at the configured base path next to a JSON health check, and
// serves until its context is cancelled.
//
// Example:
//
//	p, _ := panel.New(panel.Options{Engine: eng})
//	s := httpserver.New(p, logger)
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//	_ = s.ListenAndServe(ctx, ":8080")
package httpserver
