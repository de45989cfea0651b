package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.
// Taxonomy mirrors spec §7; only the entries that are ever surfaced to a
// caller get sentinels here — UNKNOWN_MODEL, WORKER_UNREACHABLE,
// WORKER_ERROR, STATUS_POLL_FAILED, and SUMMARIZER_FAILED are logged and
// absorbed, never returned (see the registry, dispatch, and summarizer
// packages).

var (
	// ErrNoWorkers is returned synchronously when ProcessRequest is
	// called against an empty worker registry.
	ErrNoWorkers = errors.New("NO_WORKERS: no workers registered")

	// ErrNoSuccessfulResponses is returned when dispatch completed but
	// every worker failed or was unreachable.
	ErrNoSuccessfulResponses = errors.New("NO_SUCCESSFUL_RESPONSES: no worker returned a successful response")

	// ErrRegistrationFailed covers malformed specs or a worker ID
	// re-registering with a conflicting address.
	ErrRegistrationFailed = errors.New("REGISTRATION_FAILED: invalid worker registration")

	// ErrWorkerNotFound is returned by registry operations addressing a
	// worker ID that is not currently registered.
	ErrWorkerNotFound = errors.New("worker not found")
)
