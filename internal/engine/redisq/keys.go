package redisq

import "github.com/kelp404/bull-admin-panel/pkg/engine"

// DefaultPrefix namespaces all keys when Options.Prefix is empty.
const DefaultPrefix = "bull-admin"

// keys builds the key layout for one prefix.
//
//	{prefix}:queues                  registry set of queue names
//	{prefix}:{queue}:{state}         list of job ids, newest first
//	{prefix}:{queue}:job:{id}        hash of job fields
//	{prefix}:{queue}:events          pub/sub channel for lifecycle events
type keys struct {
	prefix string
}

func (k keys) registry() string {
	return k.prefix + ":queues"
}

func (k keys) stateList(queue string, state engine.State) string {
	return k.prefix + ":" + queue + ":" + string(state)
}

func (k keys) job(queue, jobID string) string {
	return k.prefix + ":" + queue + ":job:" + jobID
}

func (k keys) events(queue string) string {
	return k.prefix + ":" + queue + ":events"
}
