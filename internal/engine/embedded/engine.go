package embedded

import (
	"fmt"
	"sort"
	"strings"

	pebblestore "github.com/kelp404/bull-admin-panel/internal/storage/pebble"
	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/id"
	"github.com/kelp404/bull-admin-panel/pkg/log"
)

// Options configures the embedded engine.
type Options struct {
	// DataDir is the Pebble database directory.
	DataDir string

	// Queues names the queues to monitor. Queues found in the store from
	// earlier runs are opened as well.
	Queues []string

	// Fsync selects the store durability policy.
	Fsync pebblestore.FsyncMode

	// Logger defaults to a text logger at info level.
	Logger log.Logger
}

// Engine is a Pebble-backed queue engine.
type Engine struct {
	db     *pebblestore.DB
	logger log.Logger

	order  []string
	queues map[string]*Queue
}

// Open opens or creates the store and its queues.
func Open(opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
	}

	db, err := pebblestore.Open(pebblestore.Options{DataDir: opts.DataDir, Fsync: opts.Fsync})
	if err != nil {
		return nil, fmt.Errorf("embedded: open store: %w", err)
	}

	e := &Engine{
		db:     db,
		logger: logger.WithComponent("embedded"),
		queues: map[string]*Queue{},
	}

	names, err := e.loadRegistry()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	for _, name := range opts.Queues {
		if !contains(names, name) {
			names = append(names, name)
			if err := db.Set(registryKey(name), nil); err != nil {
				_ = db.Close()
				return nil, fmt.Errorf("embedded: register queue %s: %w", name, err)
			}
		}
	}
	sort.Strings(names)

	gen := id.NewGenerator()
	for _, name := range names {
		e.queues[name] = newQueue(name, db, gen, e.logger)
	}
	e.order = names
	e.logger.Info("store opened", log.Str("data_dir", opts.DataDir), log.Int("queues", len(names)))
	return e, nil
}

func (e *Engine) loadRegistry() ([]string, error) {
	it, err := e.db.PrefixIter([]byte(prefixRegistry))
	if err != nil {
		return nil, fmt.Errorf("embedded: scan registry: %w", err)
	}
	defer it.Close()

	var names []string
	for it.First(); it.Valid(); it.Next() {
		names = append(names, strings.TrimPrefix(string(it.Key()), prefixRegistry))
	}
	return names, nil
}

// Queues returns the monitored queues in name order.
func (e *Engine) Queues() []engine.Queue {
	queues := make([]engine.Queue, 0, len(e.order))
	for _, name := range e.order {
		queues = append(queues, e.queues[name])
	}
	return queues
}

// Queue looks a queue up by name.
func (e *Engine) Queue(name string) (engine.Queue, bool) {
	q, ok := e.queues[name]
	return q, ok
}

// Producer returns the concrete queue for producer-side operations.
func (e *Engine) Producer(name string) (*Queue, bool) {
	q, ok := e.queues[name]
	return q, ok
}

// Close shuts down event delivery and the store.
func (e *Engine) Close() error {
	for _, q := range e.queues {
		q.events.close()
	}
	return e.db.Close()
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

var _ engine.Engine = (*Engine)(nil)
