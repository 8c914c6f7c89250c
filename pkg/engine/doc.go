// Package engine defines the narrow capability interface the admin panel
// consumes from a job-queue engine.
//
// The panel never owns queue state: it lists, counts, retries, cleans, and
// deletes jobs through these interfaces, and it subscribes to per-queue
// lifecycle events to push notifications to browsers. Implementations live
// elsewhere (internal/engine/embedded on Pebble, internal/engine/redisq on
// Redis) or are supplied by the embedding program.
package engine
