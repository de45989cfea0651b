// Package config loads the coordinator and worker TOML configuration
// files, struct-of-structs in the same shape the daemon's config used,
// each section owning sane defaults so an empty file still boots.
package config

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// CoordinatorConfig is the coordinator process's full configuration.
type CoordinatorConfig struct {
	Server     ServerSection     `toml:"server"`
	Dispatch   DispatchSection   `toml:"dispatch"`
	Summarizer SummarizerSection `toml:"summarizer"`
}

type ServerSection struct {
	BindAddress           string `toml:"bind_address"`
	MaxConcurrentHandlers int    `toml:"max_concurrent_handlers"`
}

type DispatchSection struct {
	PollIntervalSeconds  int `toml:"poll_interval_seconds"`
	StatusTimeoutSeconds int `toml:"status_timeout_seconds"`
}

func (d DispatchSection) PollInterval() time.Duration {
	return time.Duration(d.PollIntervalSeconds) * time.Second
}

func (d DispatchSection) StatusTimeout() time.Duration {
	return time.Duration(d.StatusTimeoutSeconds) * time.Second
}

type SummarizerSection struct {
	PreferredModel string `toml:"preferred_model"`
	RuntimeBinary  string `toml:"runtime_binary"`
}

// DefaultCoordinatorConfig mirrors the documented production defaults:
// port 50051 (spec §6), 20 concurrent handlers, 2s polling, 5s status
// timeout, gemma3:1b as the preferred summarization model.
func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{
		Server: ServerSection{
			BindAddress:           ":50051",
			MaxConcurrentHandlers: 20,
		},
		Dispatch: DispatchSection{
			PollIntervalSeconds:  2,
			StatusTimeoutSeconds: 5,
		},
		Summarizer: SummarizerSection{
			PreferredModel: "gemma3:1b",
			RuntimeBinary:  "ollama",
		},
	}
}

// LoadCoordinatorConfig reads path, overlaying it on top of
// DefaultCoordinatorConfig — fields absent from the file keep their
// default value.
func LoadCoordinatorConfig(path string) (CoordinatorConfig, error) {
	cfg := DefaultCoordinatorConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return CoordinatorConfig{}, fmt.Errorf("decode coordinator config %s: %w", path, err)
	}
	return cfg, nil
}

// WorkerConfig is a worker process's full configuration.
type WorkerConfig struct {
	Server  WorkerServerSection `toml:"server"`
	Runtime RuntimeSection      `toml:"runtime"`
}

type WorkerServerSection struct {
	BindAddress       string `toml:"bind_address"`
	CoordinatorAddress string `toml:"coordinator_address"`
}

type RuntimeSection struct {
	Binary       string `toml:"binary"`
	CacheDBPath  string `toml:"cache_db_path"`
}

// DefaultWorkerConfig mirrors the documented production default: port
// 50052 for coordinator callbacks (spec §6).
func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		Server: WorkerServerSection{
			BindAddress:        ":50052",
			CoordinatorAddress: "http://127.0.0.1:50051",
		},
		Runtime: RuntimeSection{
			Binary:      "ollama",
			CacheDBPath: "worker_models.db",
		},
	}
}

func LoadWorkerConfig(path string) (WorkerConfig, error) {
	cfg := DefaultWorkerConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return WorkerConfig{}, fmt.Errorf("decode worker config %s: %w", path, err)
	}
	return cfg, nil
}
