package edge

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/fogmesh/fogllm/internal/domain"
)

func fakeCoordinator(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/process", func(w http.ResponseWriter, r *http.Request) {
		var req domain.AIRequest
		json.NewDecoder(r.Body).Decode(&req)
		json.NewEncoder(w).Encode(domain.AIResponse{Success: true, ResponseText: "echo: " + req.Prompt, RequestID: "r1"})
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(domain.HealthStatus{Healthy: true, Message: "ok"})
	})
	mux.HandleFunc("/rebalance", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]domain.Worker{})
	})
	return httptest.NewServer(mux)
}

func TestHandleQueryForwardsToCoordinator(t *testing.T) {
	coord := fakeCoordinator(t)
	defer coord.Close()

	b := New(coord.URL)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"prompt":"hi"}`))
	b.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Response != "echo: hi" {
		t.Errorf("Response = %q, want %q", resp.Response, "echo: hi")
	}
	if resp.SessionID == "" {
		t.Error("expected a generated session ID")
	}
}

func TestHandleHealthForwardsToCoordinator(t *testing.T) {
	coord := fakeCoordinator(t)
	defer coord.Close()

	b := New(coord.URL)
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleReassignForwardsToCoordinator(t *testing.T) {
	coord := fakeCoordinator(t)
	defer coord.Close()

	b := New(coord.URL)
	rec := httptest.NewRecorder()
	b.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/reassign", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleQueryCoordinatorUnreachable(t *testing.T) {
	b := New("http://127.0.0.1:0")
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"prompt":"hi"}`))
	b.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
