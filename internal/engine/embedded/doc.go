// Package embedded is a Pebble-backed queue engine. It stores job records and
// per-state index keys under q/{queue}/ prefixes, emits lifecycle events
// through an in-process notifier, and exposes both the admin surface consumed
// by the panel and the producer operations used by embedding programs and the
// seed command.
package embedded
