package rpc

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/fogmesh/fogllm/internal/domain"
)

// WorkerServer implements the RPC surface a worker exposes to the
// coordinator: ProcessAIRequest and GetProcessingStatus.
type WorkerServer struct {
	backend domain.InferenceBackend
	logger  *log.Logger
}

func NewWorkerServer(backend domain.InferenceBackend, logger *log.Logger) *WorkerServer {
	if logger == nil {
		logger = log.Default()
	}
	return &WorkerServer{backend: backend, logger: logger}
}

func (s *WorkerServer) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/process", s.handleProcessAIRequest)
	r.Post("/status", s.handleGetProcessingStatus)
	r.Get("/health", s.handleHealth)

	return r
}

// handleProcessAIRequest runs the request synchronously and returns
// once inference completes — there is no wall-clock timeout imposed
// on this call.
func (s *WorkerServer) handleProcessAIRequest(w http.ResponseWriter, r *http.Request) {
	var req domain.AIRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	start := time.Now()
	text, err := s.backend.Run(r.Context(), req.RequestID, req.AssignedModel, req.Prompt, req.Images)
	elapsed := time.Since(start).Seconds()

	if err != nil {
		s.logger.Printf("[worker-rpc] request %s failed: %v", req.RequestID, err)
		writeJSON(w, http.StatusOK, domain.AIResponse{
			RequestID: req.RequestID,
			Success:   false,
			ModelUsed: req.AssignedModel,
			Timestamp: time.Now().Unix(),
		})
		return
	}

	writeJSON(w, http.StatusOK, domain.AIResponse{
		RequestID:      req.RequestID,
		Success:        true,
		ResponseText:   text,
		ProcessingTime: elapsed,
		ModelUsed:      req.AssignedModel,
		Timestamp:      time.Now().Unix(),
	})
}

func (s *WorkerServer) handleGetProcessingStatus(w http.ResponseWriter, r *http.Request) {
	var req domain.StatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	status, ok := s.backend.Progress(r.Context(), req.RequestID)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown request id")
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *WorkerServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, domain.HealthStatus{Healthy: true, Message: "worker healthy"})
}
