package embedded

import (
	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/id"
)

// Key prefixes for engine data structures
const (
	prefixJob      = "job/" // Job records
	prefixIndex    = "idx/" // Per-state listing index
	prefixRegistry = "queues/"
)

// queuePrefix returns the base prefix for a queue.
// Format: q/{queue}/
func queuePrefix(queue string) string {
	return "q/" + queue + "/"
}

// jobKey returns the job record key.
// Format: q/{queue}/job/{id}
func jobKey(queue, jobID string) []byte {
	return []byte(queuePrefix(queue) + prefixJob + jobID)
}

// indexKey returns the per-state listing index key. The 16 id bytes are
// bitwise inverted so an ascending scan yields newest jobs first.
// Format: q/{queue}/idx/{state}/{^id}
func indexKey(queue string, state engine.State, jobID id.ID) []byte {
	prefix := queuePrefix(queue) + prefixIndex + string(state) + "/"
	key := make([]byte, len(prefix)+16)
	copy(key, prefix)
	for i, b := range jobID {
		key[len(prefix)+i] = ^b
	}
	return key
}

// indexPrefix returns the prefix for scanning one state's index.
// Format: q/{queue}/idx/{state}/
func indexPrefix(queue string, state engine.State) []byte {
	return []byte(queuePrefix(queue) + prefixIndex + string(state) + "/")
}

// registryKey records a queue name so reopening the store finds it.
// Format: queues/{name}
func registryKey(name string) []byte {
	return []byte(prefixRegistry + name)
}
