// Package api defines the wire protocol of the admin panel: the JSON
// envelopes exchanged over the persistent websocket channel and the DTOs
// they carry.
//
// Three envelope shapes exist on the wire:
//
//	client -> server  {"id": "...", "method": "GET", "url": "/queues", "body": {...}}
//	server -> client  {"type": "response", "id": "...", "status": 200, "body": {...}}
//	server -> client  {"type": "notification", "event": "job-failed", "body": {...}}
//
// Response ids always echo the originating request id. Notifications are not
// correlated to any request.
package api
