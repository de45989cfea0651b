// Package dispatch fans a single prompt out to every registered worker,
// tracks their progress concurrently, and collects whatever responses
// come back for summarization.
//
// Concurrency shape mirrors a bounded task executor: one goroutine per
// worker plus a single monitor goroutine per request, joined with a
// WaitGroup and a short teardown grace period.
package dispatch

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fogmesh/fogllm/internal/domain"
)

// PollInterval is how often the monitor polls a still-running worker.
const PollInterval = 2 * time.Second

// StatusTimeout bounds a single GetProcessingStatus call; failure to
// retrieve status is not fatal — the worker is assumed still working.
const StatusTimeout = 5 * time.Second

// teardownGrace is how long Run waits for worker goroutines to return
// after the monitor has decided the request is done. Run does not cancel
// them; a worker still running when the grace elapses is reported with
// an empty Result.
const teardownGrace = 200 * time.Millisecond

// Target is one worker's dispatch assignment: where to send the
// request and which images it is allowed to see.
type Target struct {
	WorkerID        string
	Address         string
	AssignedModel   string
	Score           float64
	FilteredImages  []string
}

// Result is one worker's outcome, ready for the summarizer.
type Result struct {
	WorkerID       string
	Model          string
	Score          float64
	Success        bool
	ResponseText   string
	ProcessingTime time.Duration
	Err            error
}

// Engine runs fan-out dispatches against a WorkerClient.
type Engine struct {
	client       domain.WorkerClient
	logger       *log.Logger
	pollInterval time.Duration
	statusTimeout time.Duration
}

func New(client domain.WorkerClient, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		client:        client,
		logger:        logger,
		pollInterval:  PollInterval,
		statusTimeout: StatusTimeout,
	}
}

// SetPollInterval overrides the monitor's poll cadence, primarily for
// tests that cannot afford to wait on the production 2-second cadence.
func (e *Engine) SetPollInterval(d time.Duration) {
	e.pollInterval = d
}

// Run dispatches prompt/images to every target and returns one Result
// per target once the monitor's completion condition is satisfied.
// Per spec §4.5 the request ID is minted here, each outbound
// ProcessAIRequest call carries no wall-clock timeout, and the
// completion condition is: every worker has either returned from its
// task or last reported a terminal status.
func (e *Engine) Run(ctx context.Context, prompt string, targets []Target) ([]Result, string) {
	requestID := uuid.NewString()
	if len(targets) == 0 {
		return nil, requestID
	}

	record := &progressTable{entries: make(map[string]*domain.ProgressEntry, len(targets))}
	for _, t := range targets {
		record.set(t.WorkerID, &domain.ProgressEntry{WorkerID: t.WorkerID, Status: domain.StatusQueued})
	}

	var wg sync.WaitGroup
	results := make([]Result, len(targets))

	for i, t := range targets {
		wg.Add(1)
		go func(i int, t Target) {
			defer wg.Done()
			results[i] = e.runWorker(ctx, requestID, prompt, t, record)
		}(i, t)
	}

	monitorDone := make(chan struct{})
	go func() {
		defer close(monitorDone)
		e.monitor(ctx, requestID, targets, record)
	}()

	<-monitorDone

	joined := make(chan struct{})
	go func() {
		wg.Wait()
		close(joined)
	}()
	select {
	case <-joined:
	case <-time.After(teardownGrace):
		e.logger.Printf("[dispatch] request %s: teardown grace elapsed before all workers joined", requestID)
	}

	return results, requestID
}

func (e *Engine) runWorker(ctx context.Context, requestID, prompt string, t Target, record *progressTable) Result {
	req := domain.AIRequest{
		RequestID:     requestID,
		Prompt:        prompt,
		AssignedModel: t.AssignedModel,
		Timestamp:     time.Now().Unix(),
		Images:        t.FilteredImages,
	}

	start := time.Now()
	resp, err := e.client.ProcessAIRequest(ctx, t.Address, req)
	elapsed := time.Since(start)

	if err != nil {
		e.logger.Printf("[dispatch] WORKER_UNREACHABLE worker=%s request=%s: %v", t.WorkerID, requestID, err)
		record.set(t.WorkerID, &domain.ProgressEntry{WorkerID: t.WorkerID, Status: domain.StatusError, Err: err})
		return Result{WorkerID: t.WorkerID, Model: t.AssignedModel, Score: t.Score, Success: false, Err: err, ProcessingTime: elapsed}
	}
	if !resp.Success {
		e.logger.Printf("[dispatch] WORKER_ERROR worker=%s request=%s", t.WorkerID, requestID)
		record.set(t.WorkerID, &domain.ProgressEntry{WorkerID: t.WorkerID, Status: domain.StatusError})
		return Result{WorkerID: t.WorkerID, Model: t.AssignedModel, Score: t.Score, Success: false, ProcessingTime: elapsed}
	}

	record.set(t.WorkerID, &domain.ProgressEntry{WorkerID: t.WorkerID, Status: domain.StatusCompleted, ResponseText: resp.ResponseText})
	return Result{
		WorkerID:       t.WorkerID,
		Model:          t.AssignedModel,
		Score:          t.Score,
		Success:        true,
		ResponseText:   resp.ResponseText,
		ProcessingTime: elapsed,
	}
}

// monitor polls every still-running worker every PollInterval until the
// completion condition holds: each worker either finished its task
// (record holds a terminal status from runWorker) or last reported
// COMPLETED/ERROR via GetProcessingStatus.
func (e *Engine) monitor(ctx context.Context, requestID string, targets []Target, record *progressTable) {
	ticker := time.NewTicker(e.pollInterval)
	defer ticker.Stop()

	for {
		if record.allTerminal(targets) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			e.pollOnce(ctx, requestID, targets, record)
		}
	}
}

func (e *Engine) pollOnce(ctx context.Context, requestID string, targets []Target, record *progressTable) {
	for _, t := range targets {
		if record.isTerminal(t.WorkerID) {
			continue
		}
		pollCtx, cancel := context.WithTimeout(ctx, e.statusTimeout)
		status, err := e.client.GetProcessingStatus(pollCtx, t.Address, domain.StatusRequest{RequestID: requestID, ClientID: t.WorkerID})
		cancel()
		if err != nil {
			e.logger.Printf("[dispatch] STATUS_POLL_FAILED worker=%s request=%s: %v", t.WorkerID, requestID, err)
			continue
		}
		record.update(t.WorkerID, status)
	}
}

// progressTable is the dispatch engine's shared, mutex-protected
// bookkeeping for one request — per-worker ProgressEntry state, queried
// by GetProcessingStatus polls and mutated only by runWorker/pollOnce.
type progressTable struct {
	mu      sync.Mutex
	entries map[string]*domain.ProgressEntry
}

func (p *progressTable) set(workerID string, entry *domain.ProgressEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[workerID] = entry
}

func (p *progressTable) update(workerID string, status domain.StatusResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.entries[workerID]
	if !ok {
		entry = &domain.ProgressEntry{WorkerID: workerID}
		p.entries[workerID] = entry
	}
	entry.Status = status.Status
	entry.ProgressPercentage = status.ProgressPercentage
	entry.CurrentStep = status.CurrentStep
	entry.EstimatedRemainingSeconds = status.EstimatedRemainingSeconds
}

func (p *progressTable) isTerminal(workerID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	entry, ok := p.entries[workerID]
	return ok && entry.Status.Terminal()
}

func (p *progressTable) allTerminal(targets []Target) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range targets {
		entry, ok := p.entries[t.WorkerID]
		if !ok || !entry.Status.Terminal() {
			return false
		}
	}
	return true
}
