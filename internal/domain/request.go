package domain

import "time"

// Status is the lifecycle state of one worker's progress on a request.
// It is rendered as a string rather than an int-backed iota because it
// crosses the wire as JSON and must round-trip without a lookup table.
type Status string

const (
	StatusQueued     Status = "QUEUED"
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusError      Status = "ERROR"
)

// Terminal reports whether the status represents a finished worker —
// the dispatch monitor stops polling a worker once this is true.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// AIRequest is sent to a worker's ProcessAIRequest RPC.
type AIRequest struct {
	RequestID     string   `json:"request_id"`
	Prompt        string   `json:"prompt"`
	AssignedModel string   `json:"assigned_model"`
	Timestamp     int64    `json:"timestamp"`
	Images        []string `json:"images"`
}

// AIResponse is a worker's reply to ProcessAIRequest.
type AIResponse struct {
	RequestID      string  `json:"request_id"`
	Success        bool    `json:"success"`
	ResponseText   string  `json:"response_text"`
	ProcessingTime float64 `json:"processing_time"`
	ClientID       string  `json:"client_id"`
	ModelUsed      string  `json:"model_used"`
	Timestamp      int64   `json:"timestamp"`
}

// StatusRequest polls a worker for its progress on an in-flight request.
type StatusRequest struct {
	RequestID string `json:"request_id"`
	ClientID  string `json:"client_id"`
}

// StatusResponse is a worker's reply to GetProcessingStatus.
type StatusResponse struct {
	Status                    Status  `json:"status"`
	ProgressPercentage        float64 `json:"progress_percentage"`
	CurrentStep               string  `json:"current_step"`
	EstimatedRemainingSeconds int32   `json:"estimated_remaining_seconds"`
}

// ProgressEntry is the dispatch engine's bookkeeping for one worker's
// contribution to one request. It is created on dispatch and mutated
// only by the collector, under the request's mutex.
type ProgressEntry struct {
	WorkerID                  string
	Status                    Status
	ProgressPercentage        float64
	CurrentStep               string
	EstimatedRemainingSeconds int32
	ResponseText              string
	ProcessingTime            time.Duration
	Err                       error
}
