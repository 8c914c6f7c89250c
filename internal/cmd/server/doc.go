// Package serverrun wires the configured engine, the panel, and the HTTP
// server together for the `server start` command.
package serverrun
