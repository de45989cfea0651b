// Package rpc implements the wire transport for the coordinator and
// worker operations described in the RPC surface: JSON bodies over
// plain HTTP routed with chi, chosen over gRPC because nothing in this
// system's lineage carries real protobuf/gRPC usage and the surface
// permits any IDL.
package rpc

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fogmesh/fogllm/internal/domain"
	"github.com/fogmesh/fogllm/internal/infra/catalog"
	"github.com/fogmesh/fogllm/internal/infra/dispatch"
	"github.com/fogmesh/fogllm/internal/infra/metrics"
	"github.com/fogmesh/fogllm/internal/infra/registry"
	"github.com/fogmesh/fogllm/internal/infra/summarizer"
)

// CoordinatorConfig bounds the concurrent handler pool serving
// ProcessRequest: a bounded handler pool, default 20 concurrent
// handlers.
type CoordinatorConfig struct {
	MaxConcurrentHandlers int
}

func DefaultCoordinatorConfig() CoordinatorConfig {
	return CoordinatorConfig{MaxConcurrentHandlers: 20}
}

// CoordinatorServer implements the coordinator's RPC surface.
type CoordinatorServer struct {
	registry   *registry.Registry
	catalog    *catalog.Catalog
	dispatcher *dispatch.Engine
	summarizer *summarizer.Summarizer
	logger     *log.Logger

	sem chan struct{} // bounded handler pool, same pattern as a buffered-channel semaphore
}

func NewCoordinatorServer(reg *registry.Registry, cat *catalog.Catalog, dispatcher *dispatch.Engine, summ *summarizer.Summarizer, cfg CoordinatorConfig, logger *log.Logger) *CoordinatorServer {
	if logger == nil {
		logger = log.Default()
	}
	if cfg.MaxConcurrentHandlers <= 0 {
		cfg = DefaultCoordinatorConfig()
	}
	return &CoordinatorServer{
		registry:   reg,
		catalog:    cat,
		dispatcher: dispatcher,
		summarizer: summ,
		logger:     logger,
		sem:        make(chan struct{}, cfg.MaxConcurrentHandlers),
	}
}

// Handler returns the chi router with every coordinator route mounted.
func (s *CoordinatorServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/register", s.handleRegisterWorker)
	r.Get("/models", s.handleGetAvailableModels)
	r.Post("/rebalance", s.handleRebalance)
	r.Post("/process", s.boundedHandler(s.handleProcessRequest))
	r.Get("/health", s.handleHealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// boundedHandler wraps h with the handler-pool semaphore: a request
// that finds the pool full is rejected immediately rather than queued,
// matching the teacher's "capacity, not backlog" executor policy.
func (s *CoordinatorServer) boundedHandler(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case s.sem <- struct{}{}:
			defer func() { <-s.sem }()
			h(w, r)
		default:
			writeError(w, http.StatusServiceUnavailable, "coordinator at capacity")
		}
	}
}

// registrationEnvelope is the wire shape of a registration request: a
// worker's hardware identity plus the model identifiers it discovered
// locally — registration merges newly advertised models into the
// catalog.
type registrationEnvelope struct {
	domain.WorkerInfo
	ModelsAdvertised []string `json:"models_advertised"`
}

func (s *CoordinatorServer) handleRegisterWorker(w http.ResponseWriter, r *http.Request) {
	var env registrationEnvelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reg, err := s.registry.Register(env.WorkerID, env.Hostname, env.IPAddress, env.Specs, env.ModelsAdvertised)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.RegisteredWorkers.Set(float64(s.registry.Count()))
	metrics.RebalanceTotal.Inc()
	writeJSON(w, http.StatusOK, reg)
}

func (s *CoordinatorServer) handleGetAvailableModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.Stats())
}

func (s *CoordinatorServer) handleRebalance(w http.ResponseWriter, r *http.Request) {
	snap := s.registry.Rebalance()
	metrics.RebalanceTotal.Inc()
	writeJSON(w, http.StatusOK, snap)
}

func (s *CoordinatorServer) handleProcessRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.AIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	metrics.InFlightRequests.Inc()
	defer metrics.InFlightRequests.Dec()

	start := time.Now()
	resp, err := s.process(r.Context(), req)
	metrics.DispatchLatency.Observe(time.Since(start).Seconds())

	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// process implements ProcessRequest's synchronous contract: fan out,
// collect, summarize, and return a single response. Cancellation is
// honored between dispatch and summarization — in-flight
// worker RPCs are allowed to finish, but if the caller's context is
// already done, summarization is skipped.
func (s *CoordinatorServer) process(ctx context.Context, req domain.AIRequest) (domain.AIResponse, error) {
	workers := s.registry.ListWorkers()
	if len(workers) == 0 {
		return domain.AIResponse{}, domain.ErrNoWorkers
	}

	targets := make([]dispatch.Target, 0, len(workers))
	for _, w := range workers {
		images := req.Images
		if info, ok := s.catalog.Lookup(w.AssignedModel); !ok || !info.SupportsVision {
			images = nil
		}
		targets = append(targets, dispatch.Target{
			WorkerID:       w.ID,
			Address:        w.Address,
			AssignedModel:  w.AssignedModel,
			Score:          w.Specs.PerformanceScore,
			FilteredImages: images,
		})
	}

	results, requestID := s.dispatcher.Run(ctx, req.Prompt, targets)

	var contributions []summarizer.Contribution
	for _, res := range results {
		metrics.RecordWorkerOutcome(res.WorkerID, res.Success)
		if !res.Success {
			continue
		}
		contributions = append(contributions, summarizer.Contribution{
			WorkerID:       res.WorkerID,
			Model:          res.Model,
			Score:          res.Score,
			ResponseText:   res.ResponseText,
			ProcessingTime: res.ProcessingTime,
		})
	}

	if len(contributions) == 0 {
		return domain.AIResponse{}, domain.ErrNoSuccessfulResponses
	}

	summary := bestClientResponse(contributions)
	if ctx.Err() != nil {
		s.logger.Printf("[rpc] request %s: caller context done before summarization, returning best client raw", requestID)
	} else {
		summary = s.summarizer.Summarize(ctx, contributions)
	}

	return domain.AIResponse{
		RequestID:    requestID,
		Success:      true,
		ResponseText: summary,
		Timestamp:    time.Now().Unix(),
	}, nil
}

// bestClientResponse returns the highest-scoring contribution's raw
// response text — the fallback spec §5 calls for when the caller has
// already disconnected and summarization work is abandoned.
func bestClientResponse(contributions []summarizer.Contribution) string {
	best := contributions[0]
	for _, c := range contributions[1:] {
		if c.Score > best.Score {
			best = c
		}
	}
	return best.ResponseText
}

func (s *CoordinatorServer) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.HealthStatus{
		Healthy:          true,
		Message:          "coordinator healthy",
		ConnectedClients: int32(s.registry.Count()),
		ActiveModels:     int32(s.catalog.Len()),
	})
}
