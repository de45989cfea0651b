package assignment

import (
	"testing"

	"github.com/fogmesh/fogllm/internal/domain"
)

func workers(scores ...float64) []WorkerView {
	out := make([]WorkerView, len(scores))
	for i, s := range scores {
		out[i] = WorkerView{ID: idFor(i), Score: s}
	}
	return out
}

func idFor(i int) string {
	letters := "abcdefghijklmnopqrstuvwxyz"
	return string(letters[i])
}

func models(names ...string) []domain.ModelInfo {
	out := make([]domain.ModelInfo, len(names))
	for i, n := range names {
		out[i] = domain.NewModelInfo(n, int64(i+1)*1_000_000_000, false)
	}
	return out
}

func TestComputeEmptyInputs(t *testing.T) {
	if plan := Compute(nil, models("a")); len(plan.Assignments) != 0 {
		t.Error("no workers should produce an empty plan")
	}
	if plan := Compute(workers(1, 2), nil); len(plan.Assignments) != 0 {
		t.Error("no models should produce an empty plan")
	}
}

func TestComputeEachWorkerOwnGroupWhenFewerThanModels(t *testing.T) {
	ws := workers(90, 70, 50)
	ms := models("heavy", "medium", "light", "tiny")
	plan := Compute(ws, ms)

	if len(plan.Assignments) != 3 {
		t.Fatalf("expected 3 assignments, got %d", len(plan.Assignments))
	}
	for i, w := range ws {
		if plan.Groups[w.ID] != i {
			t.Errorf("worker %s group = %d, want %d", w.ID, plan.Groups[w.ID], i)
		}
	}
}

func TestComputeStrongestWorkerGetsHeaviestModel(t *testing.T) {
	ws := workers(90, 80, 70, 60)
	ms := models("light") // single model: complexity irrelevant, one group
	plan := Compute(ws, ms)

	// Only one model/group: the top-scored worker (ws[0]) leads the
	// single group and receives the only model.
	if plan.Assignments[ws[0].ID] != "light" {
		t.Errorf("leader assignment = %q, want %q", plan.Assignments[ws[0].ID], "light")
	}
}

func TestComputeResidualRoundRobin(t *testing.T) {
	ws := workers(100, 90, 80, 70, 60, 50)
	ms := models("m-high", "m-low") // 2 groups of 3 workers each
	plan := Compute(ws, ms)

	if len(plan.Assignments) != len(ws) {
		t.Fatalf("every worker must receive an assignment, got %d of %d", len(plan.Assignments), len(ws))
	}
	for _, w := range ws {
		if plan.Assignments[w.ID] == "" {
			t.Errorf("worker %s has no assignment", w.ID)
		}
	}
}

func TestComputeDeterministic(t *testing.T) {
	ws := workers(55, 12, 99, 41, 7)
	ms := models("m1", "m2", "m3")

	first := Compute(ws, ms)
	second := Compute(ws, ms)

	for id, model := range first.Assignments {
		if second.Assignments[id] != model {
			t.Errorf("non-deterministic assignment for %s: %s vs %s", id, model, second.Assignments[id])
		}
	}
}

func TestComputeTieBreakByWorkerID(t *testing.T) {
	ws := []WorkerView{{ID: "zzz", Score: 50}, {ID: "aaa", Score: 50}}
	ms := models("only")
	plan := Compute(ws, ms)

	if plan.Assignments["aaa"] != "only" {
		t.Errorf("tie-break should favor lexicographically smaller ID; got assignments=%v", plan.Assignments)
	}
}

func TestPartitionSizes(t *testing.T) {
	ws := workers(9, 8, 7, 6, 5)
	groups := partition(ws, 3)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %d", len(groups))
	}
	total := 0
	for _, g := range groups {
		total += len(g)
	}
	if total != len(ws) {
		t.Errorf("group sizes sum to %d, want %d", total, len(ws))
	}
	// first n mod g groups get the extra member
	if len(groups[0]) < len(groups[len(groups)-1]) {
		t.Error("earlier groups should be at least as large as later groups")
	}
}
