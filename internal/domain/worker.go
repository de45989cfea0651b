package domain

import "time"

// WorkerInfo is what a worker advertises to the coordinator on
// registration (spec §6's WorkerInfo wire message).
type WorkerInfo struct {
	WorkerID  string        `json:"worker_id"`
	Hostname  string        `json:"hostname"`
	IPAddress string        `json:"ip_address"`
	Specs     HardwareSpecs `json:"specs"`
}

// Registration is the coordinator's reply to RegisterWorker.
type Registration struct {
	Success       bool      `json:"success"`
	Message       string    `json:"message"`
	AssignedModel string    `json:"assigned_model"`
	ModelInfo     ModelInfo `json:"model_info"`
	TotalClients  int32     `json:"total_clients"`
	ClientGroup   int32     `json:"client_group"`
}

// HealthStatus is the coordinator's reply to HealthCheck.
type HealthStatus struct {
	Healthy          bool   `json:"healthy"`
	Message          string `json:"message"`
	ConnectedClients int32  `json:"connected_clients"`
	ActiveModels     int32  `json:"active_models"`
}

// Worker is the registry's internal record for one registered worker.
// It is created on successful registration, mutated only by the registry
// under its lock, and destroyed on explicit deregistration or liveness
// timeout.
type Worker struct {
	ID               string
	Hostname         string
	Address          string // host:port the coordinator dials for RPC
	Specs            HardwareSpecs
	LastSeen         time.Time
	AssignedModel    string
	GroupRank        int // 0 = strongest group; lower is always stronger
	ModelsAdvertised []string
}

// Snapshot returns a value copy of the worker, safe for callers to read
// without holding the registry lock afterward.
func (w *Worker) Snapshot() Worker {
	cp := *w
	cp.ModelsAdvertised = append([]string(nil), w.ModelsAdvertised...)
	return cp
}

// AssignmentMap is a mapping from worker ID to a single assigned model
// identifier. It is a function (one model per worker) but not an
// injection: the same model may be assigned to multiple workers.
type AssignmentMap map[string]string

// GroupIndex records which group each worker landed in, alongside the
// assignment map, so callers can answer "what group is worker X in"
// without re-running the assignment algorithm.
type GroupIndex map[string]int
