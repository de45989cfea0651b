// Package edge is a thin HTTP bridge in front of a coordinator. It is
// deliberately minimal: retrieval-augmented context, chat-session
// history, and a real browser-facing API are external collaborators
// outside this system's design, so this bridge only reshapes the
// query envelope and forwards everything else untouched.
package edge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/fogmesh/fogllm/internal/domain"
)

// QueryRequest is the shape a browser-facing caller sends to /query.
type QueryRequest struct {
	Prompt    string   `json:"prompt"`
	SessionID string   `json:"session_id"`
	UseRAG    bool     `json:"use_rag"`
	Images    []string `json:"images"`
}

// QueryResponse is /query's reply, a thin envelope around AIResponse.
type QueryResponse struct {
	Success   bool              `json:"success"`
	Response  string            `json:"response"`
	SessionID string            `json:"session_id"`
	Metadata  map[string]string `json:"metadata"`
}

// Bridge forwards /query, /status, /health, and /reassign to a
// coordinator over plain HTTP. Session history and retrieval context
// are explicitly not implemented here — the request, document, and
// chat-history stores belong to a different collaborator.
type Bridge struct {
	coordinatorAddr string
	httpClient      *http.Client
}

func New(coordinatorAddr string) *Bridge {
	return &Bridge{
		coordinatorAddr: coordinatorAddr,
		httpClient:      &http.Client{},
	}
}

func (b *Bridge) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Post("/query", b.handleQuery)
	r.Get("/status", b.handleStatus)
	r.Get("/health", b.handleHealth)
	r.Post("/reassign", b.handleReassign)

	return r
}

func (b *Bridge) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	aiReq := domain.AIRequest{Prompt: req.Prompt, Images: req.Images, Timestamp: time.Now().Unix()}

	var aiResp domain.AIResponse
	if err := b.forward(r.Context(), http.MethodPost, "/process", aiReq, &aiResp); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, QueryResponse{
		Success:   aiResp.Success,
		Response:  aiResp.ResponseText,
		SessionID: req.SessionID,
		Metadata:  map[string]string{"request_id": aiResp.RequestID},
	})
}

// handleStatus has nothing request-scoped to forward to — the core
// exposes per-request progress only through the dispatch engine's
// transient in-memory table, which this bridge has no handle on — so
// it reports the coordinator's aggregate health instead.
func (b *Bridge) handleStatus(w http.ResponseWriter, r *http.Request) {
	b.forwardPassthrough(w, r, http.MethodGet, "/health")
}

func (b *Bridge) handleHealth(w http.ResponseWriter, r *http.Request) {
	b.forwardPassthrough(w, r, http.MethodGet, "/health")
}

func (b *Bridge) handleReassign(w http.ResponseWriter, r *http.Request) {
	b.forwardPassthrough(w, r, http.MethodPost, "/rebalance")
}

func (b *Bridge) forwardPassthrough(w http.ResponseWriter, r *http.Request, method, path string) {
	var out interface{}
	if err := b.forward(r.Context(), method, path, nil, &out); err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (b *Bridge) forward(ctx context.Context, method, path string, body, out interface{}) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.coordinatorAddr+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call coordinator %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("coordinator %s returned status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
