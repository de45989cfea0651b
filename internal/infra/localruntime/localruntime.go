// Package localruntime shells out to a local model runtime binary (by
// default "ollama") to run prompts and report progress. It is the
// concrete implementation of both domain.InferenceBackend (worker side)
// and domain.SummaryEngine (coordinator-side summarization), grounded
// on the same "no wall-clock timeout on the inference call itself"
// subprocess pattern the original server used.
package localruntime

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/fogmesh/fogllm/internal/domain"
)

// DefaultBinary is the runtime executable invoked for both "list
// models" discovery and "run prompt" inference.
const DefaultBinary = "ollama"

type job struct {
	startedAt time.Time
	done      bool
	err       error
}

// Runtime wraps a local model-runtime CLI. It is safe for concurrent
// use; each Run call tracks its own progress entry keyed by requestID.
type Runtime struct {
	binary string

	mu   sync.Mutex
	jobs map[string]*job
}

func New(binary string) *Runtime {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Runtime{binary: binary, jobs: make(map[string]*job)}
}

// Run executes model against prompt via `<binary> run <model> <prompt>`
// and returns the trimmed stdout. Images are appended to the prompt text
// verbatim, as received — the concrete multimodal calling convention
// depends on the installed runtime version, so this passes them through
// as plain text rather than guessing a flag syntax.
func (r *Runtime) Run(ctx context.Context, requestID, model, prompt string, images []string) (string, error) {
	r.track(requestID)

	fullPrompt := prompt
	if len(images) > 0 {
		fullPrompt = prompt + "\n\n[attached images: " + strings.Join(images, ", ") + "]"
	}

	cmd := exec.CommandContext(ctx, r.binary, "run", model, fullPrompt)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		wrapped := fmt.Errorf("%s run %s: %w: %s", r.binary, model, err, strings.TrimSpace(stderr.String()))
		r.finish(requestID, wrapped)
		return "", wrapped
	}

	r.finish(requestID, nil)
	return strings.TrimSpace(stdout.String()), nil
}

// Progress reports whether requestID is still running. The local CLI
// backend has no fine-grained percentage to offer, so it reports a
// coarse PROCESSING/COMPLETED/ERROR status rather than fabricating a
// progress percentage.
func (r *Runtime) Progress(ctx context.Context, requestID string) (domain.StatusResponse, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	j, ok := r.jobs[requestID]
	if !ok {
		return domain.StatusResponse{}, false
	}

	if !j.done {
		return domain.StatusResponse{
			Status:       domain.StatusProcessing,
			CurrentStep:  "running inference",
		}, true
	}
	if j.err != nil {
		return domain.StatusResponse{Status: domain.StatusError, CurrentStep: j.err.Error()}, true
	}
	return domain.StatusResponse{Status: domain.StatusCompleted, ProgressPercentage: 100, CurrentStep: "done"}, true
}

// Summarize satisfies domain.SummaryEngine by running the given model
// against prompt with no associated client-visible request ID.
func (r *Runtime) Summarize(ctx context.Context, model, prompt string) (string, error) {
	return r.Run(ctx, summarizeJobID(), model, prompt, nil)
}

// ListModels shells out to `<binary> list` and returns the raw model
// identifiers (first whitespace-delimited column of every line after
// the header), for the catalog to parse.
func (r *Runtime) ListModels(ctx context.Context) ([]string, error) {
	cmd := exec.CommandContext(ctx, r.binary, "list")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("%s list: %w", r.binary, err)
	}

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	if len(lines) <= 1 {
		return nil, nil
	}

	var names []string
	for _, line := range lines[1:] { // skip header
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		names = append(names, fields[0])
	}
	return names, nil
}

func (r *Runtime) track(requestID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[requestID] = &job{startedAt: time.Now()}
}

func (r *Runtime) finish(requestID string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[requestID]; ok {
		j.done = true
		j.err = err
	}
}

var summarizeSeq struct {
	mu sync.Mutex
	n  int
}

// summarizeJobID mints a distinguishable internal tracking key for
// summarization runs, which are never polled via GetProcessingStatus.
func summarizeJobID() string {
	summarizeSeq.mu.Lock()
	defer summarizeSeq.mu.Unlock()
	summarizeSeq.n++
	return fmt.Sprintf("summarize-%d", summarizeSeq.n)
}
