// Package assignment implements the performance-grouped model allocation
// algorithm: workers are ranked by hardware score, bucketed into groups,
// and the heaviest models in the catalog go to the strongest groups.
package assignment

import (
	"sort"

	"github.com/fogmesh/fogllm/internal/domain"
)

// WorkerView is the minimal read-only slice of a worker record the
// engine needs — it never touches the registry's mutex directly.
type WorkerView struct {
	ID    string
	Score float64
}

// Plan is the immutable output of Compute: a model assignment plus the
// group rank (0 = strongest) for every worker. Callers apply a Plan to
// the registry atomically.
type Plan struct {
	Assignments domain.AssignmentMap
	Groups      domain.GroupIndex
}

// Compute runs the algorithm described in the assignment engine's
// design notes: sort workers by score, partition into contiguous groups
// sized by catalog length, hand the heaviest model to the worker
// leading each group, then round-robin the catalog over whatever
// workers are left.
//
// Intra-group selection is resolved deterministically (the
// highest-scored worker in each group receives that group's model) —
// the algorithm permits randomized selection, but a deterministic
// choice keeps Compute a pure function, which is what makes this
// package trivially testable without seeding a PRNG.
func Compute(workers []WorkerView, models []domain.ModelInfo) Plan {
	plan := Plan{
		Assignments: make(domain.AssignmentMap),
		Groups:      make(domain.GroupIndex),
	}
	if len(workers) == 0 || len(models) == 0 {
		return plan
	}

	sorted := append([]WorkerView(nil), workers...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Score != sorted[j].Score {
			return sorted[i].Score > sorted[j].Score
		}
		return sorted[i].ID < sorted[j].ID
	})

	sortedModels := append([]domain.ModelInfo(nil), models...)
	sort.Slice(sortedModels, func(i, j int) bool {
		if sortedModels[i].ComplexityScore != sortedModels[j].ComplexityScore {
			return sortedModels[i].ComplexityScore > sortedModels[j].ComplexityScore
		}
		if sortedModels[i].Parameters != sortedModels[j].Parameters {
			return sortedModels[i].Parameters > sortedModels[j].Parameters
		}
		return sortedModels[i].Name < sortedModels[j].Name
	})

	n := len(sorted)
	g := len(sortedModels)
	numGroups := g
	if n < numGroups {
		numGroups = n
	}

	groups := partition(sorted, numGroups)

	assigned := make(map[string]bool, n)
	for i, group := range groups {
		if len(group) == 0 {
			continue
		}
		// group[0] is the highest-scored worker in the group, since
		// `sorted` is already score-descending and partition preserves
		// order.
		leader := group[0]
		plan.Assignments[leader.ID] = sortedModels[i].Name
		assigned[leader.ID] = true
		for _, w := range group {
			plan.Groups[w.ID] = i
		}
	}

	// Round-robin residual (unassigned) workers over the full catalog,
	// ordered ascending by parameter count, per the residual-assignment
	// rule.
	residualModels := ascendingByParameters(sortedModels)
	residualIdx := 0
	for _, w := range sorted {
		if assigned[w.ID] {
			continue
		}
		model := residualModels[residualIdx%len(residualModels)]
		plan.Assignments[w.ID] = model.Name
		residualIdx++
	}

	return plan
}

// partition splits sorted (already score-descending) into numGroups
// contiguous slices: the first `n mod numGroups` groups get
// ⌈n/numGroups⌉ members, the rest get ⌊n/numGroups⌋.
func partition(sorted []WorkerView, numGroups int) [][]WorkerView {
	n := len(sorted)
	if numGroups <= 0 {
		return nil
	}
	base := n / numGroups
	extra := n % numGroups

	groups := make([][]WorkerView, numGroups)
	start := 0
	for i := 0; i < numGroups; i++ {
		size := base
		if i < extra {
			size++
		}
		groups[i] = sorted[start : start+size]
		start += size
	}
	return groups
}

func ascendingByParameters(models []domain.ModelInfo) []domain.ModelInfo {
	out := append([]domain.ModelInfo(nil), models...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Parameters != out[j].Parameters {
			return out[i].Parameters < out[j].Parameters
		}
		return out[i].Name < out[j].Name
	})
	return out
}
