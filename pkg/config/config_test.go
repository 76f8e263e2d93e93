package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("expected default config to be valid, got error: %v", err)
	}
}

func TestValidate_StorageBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.Backend = "cassandra"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown storage backend")
	}

	cfg = DefaultConfig()
	cfg.Storage.Backend = "redis"
	cfg.Storage.Redis.Address = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis backend without address")
	}
}

func TestValidate_StreamInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Console.StreamInterval = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero stream interval")
	}
}

func TestValidate_RateLimitingDisabled_AllowsZeroValues(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RateLimiting.Enabled = false
	cfg.RateLimiting.RequestsPerSecond = 0
	cfg.RateLimiting.Burst = 0

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected config to be valid when rate limiting disabled, got error: %v", err)
	}
}

func TestValidate_TracingEnabled_RequiresEndpoint(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracing.Enabled = true
	cfg.Tracing.JaegerURL = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for tracing without jaeger url")
	}
}

func TestLoad_MissingFile_UsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Address != ":8080" {
		t.Fatalf("expected default server address, got %q", cfg.Server.Address)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := []byte("console:\n  viewer_address: \":9200\"\nlogging:\n  level: debug\n")
	if err := os.WriteFile(path, body, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Console.ViewerAddress != ":9200" {
		t.Fatalf("expected overridden viewer address, got %q", cfg.Console.ViewerAddress)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug level, got %q", cfg.Logging.Level)
	}
	// untouched sections keep their defaults
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Fatalf("expected default token ttl, got %v", cfg.Auth.TokenTTL)
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("DRONEVIEW_LOG_LEVEL", "warn")
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env override to win, got %q", cfg.Logging.Level)
	}
}
