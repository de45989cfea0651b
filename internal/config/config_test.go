package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultCoordinatorConfig(t *testing.T) {
	cfg := DefaultCoordinatorConfig()

	if cfg.Server.BindAddress != ":50051" {
		t.Errorf("Server.BindAddress = %q, want %q", cfg.Server.BindAddress, ":50051")
	}
	if cfg.Server.MaxConcurrentHandlers != 20 {
		t.Errorf("MaxConcurrentHandlers = %d, want 20", cfg.Server.MaxConcurrentHandlers)
	}
	if cfg.Dispatch.PollInterval() != 2*time.Second {
		t.Errorf("PollInterval = %v, want 2s", cfg.Dispatch.PollInterval())
	}
	if cfg.Dispatch.StatusTimeout() != 5*time.Second {
		t.Errorf("StatusTimeout = %v, want 5s", cfg.Dispatch.StatusTimeout())
	}
	if cfg.Summarizer.PreferredModel != "gemma3:1b" {
		t.Errorf("PreferredModel = %q, want %q", cfg.Summarizer.PreferredModel, "gemma3:1b")
	}
}

func TestDefaultWorkerConfig(t *testing.T) {
	cfg := DefaultWorkerConfig()
	if cfg.Server.BindAddress != ":50052" {
		t.Errorf("Server.BindAddress = %q, want %q", cfg.Server.BindAddress, ":50052")
	}
	if cfg.Runtime.Binary != "ollama" {
		t.Errorf("Runtime.Binary = %q, want %q", cfg.Runtime.Binary, "ollama")
	}
}

func TestLoadCoordinatorConfigOverlaysDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "coordinator.toml")
	contents := `
[server]
bind_address = ":9999"
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadCoordinatorConfig(path)
	if err != nil {
		t.Fatalf("LoadCoordinatorConfig failed: %v", err)
	}
	if cfg.Server.BindAddress != ":9999" {
		t.Errorf("BindAddress = %q, want %q", cfg.Server.BindAddress, ":9999")
	}
	// Untouched sections keep their defaults.
	if cfg.Dispatch.PollIntervalSeconds != 2 {
		t.Errorf("PollIntervalSeconds = %d, want default 2", cfg.Dispatch.PollIntervalSeconds)
	}
}

func TestLoadCoordinatorConfigEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := LoadCoordinatorConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg != DefaultCoordinatorConfig() {
		t.Error("expected defaults when path is empty")
	}
}

func TestLoadCoordinatorConfigMissingFile(t *testing.T) {
	if _, err := LoadCoordinatorConfig("/nonexistent/path.toml"); err == nil {
		t.Error("expected an error for a missing config file")
	}
}
