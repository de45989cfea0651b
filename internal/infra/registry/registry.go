// Package registry tracks the live worker pool: who is registered, what
// hardware they carry, and what model they are currently assigned.
//
// All mutation serializes on a single lock (spec §4.4); reads take a
// consistent snapshot under the same lock rather than copying live
// pointers, so callers can never observe a partially-applied mutation.
package registry

import (
	"log"
	"sort"
	"sync"
	"time"

	"github.com/fogmesh/fogllm/internal/domain"
	"github.com/fogmesh/fogllm/internal/infra/assignment"
	"github.com/fogmesh/fogllm/internal/infra/catalog"
)

// DefaultLivenessTimeout is how long a worker may go without contact
// before the reaper considers it dead. This is a passive, timestamp-only
// check — it is deliberately not a SWIM-style active probe, because the
// registry only ever hears from a worker when that worker calls
// RegisterWorker; the coordinator has no channel to ping it back on.
const DefaultLivenessTimeout = 90 * time.Second

// Registry is the single source of truth for the worker pool and the
// model catalog derived from it.
type Registry struct {
	mu               sync.Mutex
	workers          map[string]*domain.Worker
	catalog          *catalog.Catalog
	livenessTimeout  time.Duration
	logger           *log.Logger
}

func New(cat *catalog.Catalog, logger *log.Logger) *Registry {
	if logger == nil {
		logger = log.Default()
	}
	return &Registry{
		workers:         make(map[string]*domain.Worker),
		catalog:         cat,
		livenessTimeout: DefaultLivenessTimeout,
		logger:          logger,
	}
}

// SetLivenessTimeout overrides the default, primarily for tests.
func (r *Registry) SetLivenessTimeout(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.livenessTimeout = d
}

// Register inserts or updates a worker record, merges its advertised
// models into the catalog, triggers a full reassignment, and returns the
// assignment for the calling worker plus the current worker count (spec
// §4.4).
func (r *Registry) Register(id, hostname, address string, specs domain.HardwareSpecs, modelsAdvertised []string) (domain.Registration, error) {
	if id == "" || address == "" || specs.PerformanceScore < 0 || specs.PerformanceScore > 100 {
		return domain.Registration{}, domain.ErrRegistrationFailed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	w, exists := r.workers[id]
	if exists && w.Address != address {
		return domain.Registration{}, domain.ErrRegistrationFailed
	}

	applied := make(map[string]bool)
	for _, name := range r.catalog.Discover(modelsAdvertised) {
		applied[name] = true
	}
	for _, name := range modelsAdvertised {
		if !applied[name] {
			r.logger.Printf("[registry] UNKNOWN_MODEL worker=%s: skipping unparseable model identifier %q", id, name)
		}
	}

	if !exists {
		w = &domain.Worker{ID: id}
		r.workers[id] = w
	}
	w.Hostname = hostname
	w.Address = address
	w.Specs = specs
	w.LastSeen = time.Now()
	w.ModelsAdvertised = append([]string(nil), modelsAdvertised...)

	plan := r.computePlanLocked()
	r.applyPlanLocked(plan)

	info, _ := r.catalog.Lookup(w.AssignedModel)
	return domain.Registration{
		Success:       true,
		Message:       "registered",
		AssignedModel: w.AssignedModel,
		ModelInfo:     info,
		TotalClients:  int32(len(r.workers)),
		ClientGroup:   int32(w.GroupRank),
	}, nil
}

// Deregister removes a worker. Per spec §4.4 this does NOT trigger a
// reassignment — the shrunk set is used as-is by the next dispatch,
// until the next registration or an explicit Rebalance.
func (r *Registry) Deregister(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.workers[id]; !ok {
		return domain.ErrWorkerNotFound
	}
	delete(r.workers, id)
	return nil
}

// ListWorkers returns a defensive copy of every active worker record.
func (r *Registry) ListWorkers() []domain.Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked()
}

// Rebalance forces a fresh reassignment over the current worker set and
// catalog, without waiting for a new registration.
func (r *Registry) Rebalance() []domain.Worker {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan := r.computePlanLocked()
	r.applyPlanLocked(plan)
	return r.snapshotLocked()
}

// ReapDead drops every worker whose LastSeen exceeds the liveness
// timeout. It does not reassign survivors — reassignment happens only
// through Register or Rebalance, per spec §4.4's non-reassignment rule
// on membership shrink. Returns the IDs removed, for logging.
func (r *Registry) ReapDead(now time.Time) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	var dead []string
	for id, w := range r.workers {
		if now.Sub(w.LastSeen) > r.livenessTimeout {
			dead = append(dead, id)
		}
	}
	for _, id := range dead {
		delete(r.workers, id)
	}
	return dead
}

// RunLivenessReaper starts a background sweep every interval until stop
// is closed. Grounded on the same "periodic sweep over a timestamped
// member table" idea as a SWIM failure detector, but passive: there is
// no probe round-trip, only a LastSeen comparison, because the registry
// never initiates contact with a worker.
func (r *Registry) RunLivenessReaper(interval time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case now := <-ticker.C:
			if dead := r.ReapDead(now); len(dead) > 0 {
				r.logger.Printf("[registry] reaped %d unresponsive worker(s): %v", len(dead), dead)
			}
		}
	}
}

func (r *Registry) snapshotLocked() []domain.Worker {
	out := make([]domain.Worker, 0, len(r.workers))
	for _, w := range r.workers {
		out = append(out, w.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) computePlanLocked() assignment.Plan {
	views := make([]assignment.WorkerView, 0, len(r.workers))
	for id, w := range r.workers {
		views = append(views, assignment.WorkerView{ID: id, Score: w.Specs.PerformanceScore})
	}
	return assignment.Compute(views, r.catalog.SortedByComplexityDesc())
}

func (r *Registry) applyPlanLocked(plan assignment.Plan) {
	for id, w := range r.workers {
		if model, ok := plan.Assignments[id]; ok {
			w.AssignedModel = model
		}
		if group, ok := plan.Groups[id]; ok {
			w.GroupRank = group
		} else {
			w.GroupRank = len(plan.Groups)
		}
	}
}

// Count returns the number of currently registered workers.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.workers)
}

// Get returns a single worker's snapshot.
func (r *Registry) Get(id string) (domain.Worker, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return domain.Worker{}, false
	}
	return w.Snapshot(), true
}
