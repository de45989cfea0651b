package domain

import "context"

// ─── Service Interfaces ─────────────────────────────────────────────────────
// These interfaces define boundaries between layers.
// Infrastructure implements them; application layer depends on them.

// InferenceBackend abstracts a worker's local "run this prompt through
// this model" capability. The worker-side model runtime is an external
// collaborator (spec §1 Non-goals) — this interface is the only contact
// point, so it can be swapped for an in-memory stub in tests.
type InferenceBackend interface {
	// Run executes a prompt against a model under requestID and returns
	// the full response text. There is no streaming — responses are
	// whole-message (spec §1). requestID is the same identifier a
	// concurrent GetProcessingStatus call names via Progress.
	Run(ctx context.Context, requestID, model, prompt string, images []string) (string, error)

	// Progress reports the backend's current progress on requestID, if
	// the backend is still tracking it.
	Progress(ctx context.Context, requestID string) (StatusResponse, bool)
}

// WorkerClient abstracts the coordinator's outbound RPC to a worker, so
// the dispatch engine can be tested against an in-memory fake instead of
// a real network connection.
type WorkerClient interface {
	ProcessAIRequest(ctx context.Context, addr string, req AIRequest) (AIResponse, error)
	GetProcessingStatus(ctx context.Context, addr string, req StatusRequest) (StatusResponse, error)
}

// SummaryEngine abstracts "run this prompt through the summarization
// model" so the summarizer can be tested with an in-memory stub instead
// of a real local model subprocess (spec §9).
type SummaryEngine interface {
	Summarize(ctx context.Context, model, prompt string) (string, error)
}
