// Command worker runs a fog inference worker: it evaluates local
// hardware, discovers locally-available models, registers with a
// coordinator, and serves inference requests over HTTP.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/fogmesh/fogllm/internal/cli"
	"github.com/fogmesh/fogllm/internal/config"
	"github.com/fogmesh/fogllm/internal/domain"
	"github.com/fogmesh/fogllm/internal/infra/catalog"
	"github.com/fogmesh/fogllm/internal/infra/localruntime"
	"github.com/fogmesh/fogllm/internal/infra/modelcache"
	"github.com/fogmesh/fogllm/internal/infra/perfeval"
	"github.com/fogmesh/fogllm/internal/rpc"
)

func serve(configPath string) error {
	cfg, err := config.LoadWorkerConfig(configPath)
	if err != nil {
		return err
	}

	logger := log.New(os.Stdout, "[worker] ", log.LstdFlags)

	cache, err := modelcache.Open(cfg.Runtime.CacheDBPath)
	if err != nil {
		return err
	}
	defer cache.Close()

	runtime := localruntime.New(cfg.Runtime.Binary)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	discovered, err := runtime.ListModels(ctx)
	cancel()
	if err != nil {
		logger.Printf("model discovery failed, falling back to the local model cache: %v", err)
		if cached, cerr := cache.All(); cerr == nil {
			for _, info := range cached {
				discovered = append(discovered, info.Name)
			}
		}
	}
	persistDiscoveredModels(cache, discovered, logger)

	workerID := uuid.NewString()
	specs := perfeval.Evaluate()

	if err := registerWithCoordinator(cfg, workerID, specs, discovered, logger); err != nil {
		logger.Printf("initial registration failed, serving anyway: %v", err)
	}

	server := rpc.NewWorkerServer(runtime, logger)
	logger.Printf("worker %s listening on %s", workerID, cfg.Server.BindAddress)
	return http.ListenAndServe(cfg.Server.BindAddress, server.Handler())
}

func registerWithCoordinator(cfg config.WorkerConfig, workerID string, specs domain.HardwareSpecs, discovered []string, logger *log.Logger) error {
	client := rpc.NewWorkerHTTPClient()
	info := domain.WorkerInfo{
		WorkerID:  workerID,
		Hostname:  hostname(),
		IPAddress: cfg.Server.BindAddress,
		Specs:     specs,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := client.RegisterSelf(ctx, cfg.Server.CoordinatorAddress, info, discovered); err != nil {
		return err
	}
	logger.Printf("registered with coordinator at %s", cfg.Server.CoordinatorAddress)
	return nil
}

// persistDiscoveredModels parses each identifier and writes it to the
// local cache, which serve reads back when model discovery fails.
// Discovery itself still runs on every start.
func persistDiscoveredModels(cache *modelcache.Cache, identifiers []string, logger *log.Logger) {
	var infos []domain.ModelInfo
	for _, id := range identifiers {
		if info, ok := catalog.Parse(id); ok {
			infos = append(infos, info)
		}
	}
	if len(infos) == 0 {
		return
	}
	if err := cache.PutAll(infos); err != nil {
		logger.Printf("failed to persist discovered models: %v", err)
	}
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown-host"
	}
	return h
}

func main() {
	root := cli.NewWorkerRootCmd(cli.WorkerDeps{Serve: serve})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
