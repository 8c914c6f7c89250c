// Package client contains Cobra CLI commands that talk to a running panel
// over its websocket endpoint.
package client
