package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordWorkerOutcomeIncrementsCorrectLabel(t *testing.T) {
	WorkerOutcomes.Reset()

	RecordWorkerOutcome("w1", true)
	RecordWorkerOutcome("w1", false)
	RecordWorkerOutcome("w1", true)

	if got := testutil.ToFloat64(WorkerOutcomes.WithLabelValues("w1", "success")); got != 2 {
		t.Errorf("success count = %v, want 2", got)
	}
	if got := testutil.ToFloat64(WorkerOutcomes.WithLabelValues("w1", "failure")); got != 1 {
		t.Errorf("failure count = %v, want 1", got)
	}
}
