// Command coordinator runs the fog inference coordinator: it accepts
// worker registrations, fans out prompts, and synthesizes one answer
// per request.
package main

import (
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/fogmesh/fogllm/internal/cli"
	"github.com/fogmesh/fogllm/internal/config"
	"github.com/fogmesh/fogllm/internal/infra/catalog"
	"github.com/fogmesh/fogllm/internal/infra/dispatch"
	"github.com/fogmesh/fogllm/internal/infra/localruntime"
	"github.com/fogmesh/fogllm/internal/infra/registry"
	"github.com/fogmesh/fogllm/internal/infra/summarizer"
	"github.com/fogmesh/fogllm/internal/rpc"
)

func serve(configPath string) error {
	cfg, err := config.LoadCoordinatorConfig(configPath)
	if err != nil {
		return err
	}

	logger := log.New(os.Stdout, "[coordinator] ", log.LstdFlags)

	cat := catalog.New()
	reg := registry.New(cat, logger)

	stopReaper := make(chan struct{})
	defer close(stopReaper)
	go reg.RunLivenessReaper(registry.DefaultLivenessTimeout/3, stopReaper)

	workerClient := rpc.NewWorkerHTTPClient()
	disp := dispatch.New(workerClient, logger)
	disp.SetPollInterval(cfg.Dispatch.PollInterval())

	runtime := localruntime.New(cfg.Summarizer.RuntimeBinary)
	summ := summarizer.New(runtime, cat, logger)

	server := rpc.NewCoordinatorServer(reg, cat, disp, summ, rpc.CoordinatorConfig{
		MaxConcurrentHandlers: cfg.Server.MaxConcurrentHandlers,
	}, logger)

	logger.Printf("listening on %s", cfg.Server.BindAddress)
	return http.ListenAndServe(cfg.Server.BindAddress, server.Handler())
}

func main() {
	root := cli.NewCoordinatorRootCmd(cli.CoordinatorDeps{Serve: serve})
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
