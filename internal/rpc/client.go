package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/fogmesh/fogllm/internal/domain"
)

// WorkerHTTPClient implements domain.WorkerClient over plain HTTP,
// calling a worker's /process and /status routes.
type WorkerHTTPClient struct {
	httpClient *http.Client
}

func NewWorkerHTTPClient() *WorkerHTTPClient {
	return &WorkerHTTPClient{httpClient: &http.Client{}}
}

// ProcessAIRequest posts to addr/process. This call carries no
// wall-clock timeout of its own — the only bound is whatever deadline
// the caller's ctx already carries.
func (c *WorkerHTTPClient) ProcessAIRequest(ctx context.Context, addr string, req domain.AIRequest) (domain.AIResponse, error) {
	var resp domain.AIResponse
	err := c.postJSON(ctx, addr+"/process", req, &resp)
	return resp, err
}

// GetProcessingStatus posts to addr/status. Callers are expected to
// bound ctx with StatusTimeout before calling this.
func (c *WorkerHTTPClient) GetProcessingStatus(ctx context.Context, addr string, req domain.StatusRequest) (domain.StatusResponse, error) {
	var resp domain.StatusResponse
	err := c.postJSON(ctx, addr+"/status", req, &resp)
	return resp, err
}

// RegisterSelf posts a registration envelope to coordinatorAddr/register,
// used by a worker process announcing itself on startup.
func (c *WorkerHTTPClient) RegisterSelf(ctx context.Context, coordinatorAddr string, info domain.WorkerInfo, modelsAdvertised []string) (domain.Registration, error) {
	envelope := struct {
		domain.WorkerInfo
		ModelsAdvertised []string `json:"models_advertised"`
	}{WorkerInfo: info, ModelsAdvertised: modelsAdvertised}

	var reg domain.Registration
	err := c.postJSON(ctx, coordinatorAddr+"/register", envelope, &reg)
	return reg, err
}

func (c *WorkerHTTPClient) postJSON(ctx context.Context, url string, body, out interface{}) error {
	if !strings.Contains(url, "://") {
		url = "http://" + url
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("call %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("call %s: status %d", url, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", url, err)
	}
	return nil
}
