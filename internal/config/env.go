package config

import (
	"os"
	"strconv"
	"strings"
)

// FromEnv overlays BULL_ADMIN_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("BULL_ADMIN_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("BULL_ADMIN_BASE_PATH"); v != "" {
		cfg.BasePath = v
	}
	if v := os.Getenv("BULL_ADMIN_ENGINE"); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv("BULL_ADMIN_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("BULL_ADMIN_QUEUES"); v != "" {
		parts := strings.Split(v, ",")
		cfg.Queues = nil
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cfg.Queues = append(cfg.Queues, p)
			}
		}
	}
	if v := os.Getenv("BULL_ADMIN_REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("BULL_ADMIN_REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("BULL_ADMIN_REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("BULL_ADMIN_REDIS_PREFIX"); v != "" {
		cfg.Redis.Prefix = v
	}
	if v := os.Getenv("BULL_ADMIN_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Debug = b
		}
	}
	if v := os.Getenv("BULL_ADMIN_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("BULL_ADMIN_LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}
