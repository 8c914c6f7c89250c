package redisq

import (
	"context"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/kelp404/bull-admin-panel/pkg/engine"
	"github.com/kelp404/bull-admin-panel/pkg/id"
	"github.com/kelp404/bull-admin-panel/pkg/log"
)

// Options configures the Redis engine.
type Options struct {
	// Addr is the Redis server address, host:port.
	Addr     string
	Password string
	DB       int

	// Prefix namespaces every key. Defaults to DefaultPrefix.
	Prefix string

	// Queues names the queues to monitor. Queues found in the registry set
	// from earlier runs are opened as well.
	Queues []string

	// Client overrides Addr/Password/DB with an existing client, for
	// embedders that already hold one.
	Client redis.UniversalClient

	// Logger defaults to a text logger at info level.
	Logger log.Logger
}

// Engine is a Redis-backed queue engine.
type Engine struct {
	rdb    redis.UniversalClient
	keys   keys
	logger log.Logger

	order  []string
	queues map[string]*Queue

	// ownsClient is set when Open created the client and Close should
	// release it.
	ownsClient bool
}

// Open connects to Redis, merges the configured queues into the registry
// set, and opens every registered queue.
func Open(ctx context.Context, opts Options) (*Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewLogger()
	}
	prefix := opts.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}

	rdb := opts.Client
	owns := false
	if rdb == nil {
		rdb = redis.NewClient(&redis.Options{Addr: opts.Addr, Password: opts.Password, DB: opts.DB})
		owns = true
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		if owns {
			_ = rdb.Close()
		}
		return nil, fmt.Errorf("redisq: ping: %w", err)
	}

	e := &Engine{
		rdb:        rdb,
		keys:       keys{prefix: prefix},
		logger:     logger.WithComponent("redisq"),
		queues:     map[string]*Queue{},
		ownsClient: owns,
	}

	if len(opts.Queues) > 0 {
		members := make([]any, 0, len(opts.Queues))
		for _, name := range opts.Queues {
			members = append(members, name)
		}
		if err := rdb.SAdd(ctx, e.keys.registry(), members...).Err(); err != nil {
			e.closeClient()
			return nil, fmt.Errorf("redisq: register queues: %w", err)
		}
	}
	names, err := rdb.SMembers(ctx, e.keys.registry()).Result()
	if err != nil {
		e.closeClient()
		return nil, fmt.Errorf("redisq: load registry: %w", err)
	}
	sort.Strings(names)

	gen := id.NewGenerator()
	for _, name := range names {
		e.queues[name] = newQueue(name, rdb, e.keys, gen, e.logger)
	}
	e.order = names
	e.logger.Info("connected", log.Str("prefix", prefix), log.Int("queues", len(names)))
	return e, nil
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

// Close releases the client when this engine owns it.
func (e *Engine) Close() error {
	e.closeClient()
	return nil
}

func (e *Engine) closeClient() {
	if e.ownsClient {
		_ = e.rdb.Close()
	}
}

var _ engine.Engine = (*Engine)(nil)
