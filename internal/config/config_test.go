package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Addr != ":8080" {
		t.Fatalf("default addr = %q", cfg.Addr)
	}
	if cfg.BasePath != "/bull-admin" {
		t.Fatalf("default base path = %q", cfg.BasePath)
	}
	if cfg.Engine != EngineEmbedded {
		t.Fatalf("default engine = %q", cfg.Engine)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "bull-admin.json")
	data := []byte(`{"addr":":9090","engine":"redis","queues":["mail","video"],"redis":{"addr":"redis:6379","prefix":"jobs"}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Engine != EngineRedis {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.Queues) != 2 || cfg.Queues[1] != "video" {
		t.Fatalf("queues = %v", cfg.Queues)
	}
	if cfg.Redis.Addr != "redis:6379" || cfg.Redis.Prefix != "jobs" {
		t.Fatalf("redis = %+v", cfg.Redis)
	}
	// Unset file fields keep their defaults.
	if cfg.BasePath != "/bull-admin" {
		t.Fatalf("base path = %q", cfg.BasePath)
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	t.Setenv("BULL_ADMIN_ADDR", ":7070")
	t.Setenv("BULL_ADMIN_ENGINE", "redis")
	t.Setenv("BULL_ADMIN_QUEUES", "mail, video ,")
	t.Setenv("BULL_ADMIN_DEBUG", "true")

	FromEnv(&cfg)
	if cfg.Addr != ":7070" || cfg.Engine != EngineRedis || !cfg.Debug {
		t.Fatalf("cfg = %+v", cfg)
	}
	if len(cfg.Queues) != 2 || cfg.Queues[0] != "mail" || cfg.Queues[1] != "video" {
		t.Fatalf("queues = %v", cfg.Queues)
	}
}

func TestValidateRejectsUnknownEngine(t *testing.T) {
	cfg := Default()
	cfg.Engine = "sqlite"
	if err := cfg.Validate(); err == nil {
		t.Fatal("unknown engine accepted")
	}

	cfg = Default()
	cfg.Queues = nil
	if err := cfg.Validate(); err == nil {
		t.Fatal("empty queue list accepted")
	}
}

func TestDefaultDataDirNeverEmpty(t *testing.T) {
	if DefaultDataDir() == "" {
		t.Fatal("empty data dir")
	}
}
