// Package metrics registers the Prometheus series exposed at /metrics,
// trimmed down from a much larger observability surface to the handful
// of gauges/counters/histograms the coordinator actually produces.
// Workers record no metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisteredWorkers tracks the current size of the worker pool.
var RegisteredWorkers = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "fogllm",
	Subsystem: "registry",
	Name:      "registered_workers",
	Help:      "Current number of workers registered with the coordinator.",
})

// InFlightRequests tracks requests currently being dispatched.
var InFlightRequests = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "fogllm",
	Subsystem: "dispatch",
	Name:      "in_flight_requests",
	Help:      "Number of ProcessRequest calls currently being dispatched.",
})

// DispatchLatency tracks end-to-end dispatch duration, from request
// acceptance to summarized response.
var DispatchLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "fogllm",
	Subsystem: "dispatch",
	Name:      "latency_seconds",
	Help:      "End-to-end latency of a dispatched request, in seconds.",
	Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12),
})

// WorkerOutcomes counts successes and failures per worker ID, so a
// flaky worker stands out in a dashboard.
var WorkerOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "fogllm",
	Subsystem: "dispatch",
	Name:      "worker_outcomes_total",
	Help:      "Per-worker outcome counts for dispatched requests.",
}, []string{"worker_id", "outcome"})

// RebalanceTotal counts how many times the assignment engine has run,
// whether triggered by registration or an explicit Rebalance call.
var RebalanceTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "fogllm",
	Subsystem: "registry",
	Name:      "rebalance_total",
	Help:      "Total number of assignment recomputations.",
})

// RecordWorkerOutcome is a small helper so call sites don't repeat the
// label pair construction.
func RecordWorkerOutcome(workerID string, success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	WorkerOutcomes.WithLabelValues(workerID, outcome).Inc()
}
