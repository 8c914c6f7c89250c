package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Engine backend selectors.
const (
	EngineEmbedded = "embedded"
	EngineRedis    = "redis"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	// Addr is the HTTP listen address.
	Addr string `json:"addr"`

	// BasePath is the websocket upgrade path the panel is mounted on.
	BasePath string `json:"basePath"`

	// Engine selects the queue backend: embedded or redis.
	Engine string `json:"engine"`

	// DataDir holds the embedded engine's store. Empty selects a per-OS
	// default location.
	DataDir string `json:"dataDir"`

	// Queues names the queues to monitor.
	Queues []string `json:"queues"`

	Redis RedisConfig `json:"redis"`

	// Debug includes stack traces in error response bodies.
	Debug bool `json:"debug"`

	Log LogConfig `json:"log"`
}

// RedisConfig configures the redis engine.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
	Prefix   string `json:"prefix"`
}

// LogConfig configures the logging pipeline.
type LogConfig struct {
	// Level is one of debug, info, warn, error, fatal.
	Level string `json:"level"`
	// Format is text or json.
	Format string `json:"format"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		Addr:     ":8080",
		BasePath: "/bull-admin",
		Engine:   EngineEmbedded,
		Queues:   []string{"default"},
		Redis: RedisConfig{
			Addr:   "127.0.0.1:6379",
			Prefix: "bull-admin",
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

// Load reads configuration from a JSON file over the defaults. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := Default()
	if err := json.Unmarshal(b, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c Config) Validate() error {
	switch c.Engine {
	case EngineEmbedded, EngineRedis:
	default:
		return fmt.Errorf("config: unknown engine %q", c.Engine)
	}
	if len(c.Queues) == 0 {
		return fmt.Errorf("config: at least one queue is required")
	}
	return nil
}
