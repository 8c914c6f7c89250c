// Package client is the Go socket facade for the bull-admin-panel protocol.
// It multiplexes request/response exchanges over a single websocket
// connection, survives reconnects by resending pending requests, and fans
// incoming notifications out to registered subscribers.
package client
