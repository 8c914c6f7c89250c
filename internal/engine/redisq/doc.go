// Package redisq is a Redis-backed queue engine. Jobs live in one hash per
// job, per-state listings in lists (newest first), queue discovery in a
// registry set, and lifecycle events travel over a pub/sub channel per queue,
// all under a configurable key prefix.
package redisq
