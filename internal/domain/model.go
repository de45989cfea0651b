// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

import (
	"fmt"
)

// ─── Model Types ────────────────────────────────────────────────────────────

// ModelInfo describes a model available to run on some worker.
// ComplexityScore is derived from Parameters via ComplexityRank and must
// never be set independently of it — see NewModelInfo.
type ModelInfo struct {
	Name            string  `json:"name"`
	Parameters      int64   `json:"parameters"`
	SizeGB          float64 `json:"size_gb"`
	ComplexityScore int32   `json:"complexity_score"`
	SupportsVision  bool    `json:"supports_vision"`
}

// bytesPerParameter is the assumed on-disk footprint per parameter,
// matching "1B parameters ≈ 2GB (16-bit precision)".
const bytesPerParameter = 2.0

// EstimateSizeGB converts a parameter count into an estimated on-disk
// size in GB: parameters · 2 bytes / 10⁹.
func EstimateSizeGB(parameters int64) float64 {
	return float64(parameters) / 1_000_000_000 * bytesPerParameter
}

// complexityStep is one row of the fixed step function mapping parameter
// count to complexity rank (§4.2). Rows must stay sorted by Params
// descending; ComplexityRank relies on that order.
type complexityStep struct {
	Params int64
	Rank   int32
}

var complexitySteps = []complexityStep{
	{70_000_000_000, 10},
	{30_000_000_000, 9},
	{13_000_000_000, 8},
	{8_000_000_000, 7},
	{7_000_000_000, 6},
	{3_000_000_000, 5},
	{1_000_000_000, 4},
	{500_000_000, 3},
	{100_000_000, 2},
}

// ComplexityRank derives the 1–10 complexity rank from a parameter count
// via the fixed step function. It is monotone non-decreasing in parameters.
func ComplexityRank(parameters int64) int32 {
	for _, step := range complexitySteps {
		if parameters >= step.Params {
			return step.Rank
		}
	}
	return 1
}

// NewModelInfo builds a ModelInfo with SizeGB and ComplexityScore derived
// from parameters, so callers can never desync the two from the param count.
func NewModelInfo(name string, parameters int64, supportsVision bool) ModelInfo {
	return ModelInfo{
		Name:            name,
		Parameters:      parameters,
		SizeGB:          EstimateSizeGB(parameters),
		ComplexityScore: ComplexityRank(parameters),
		SupportsVision:  supportsVision,
	}
}

// FormatParameters renders a parameter count in human-readable form
// ("8B", "350M"), for logs and admin CLI output.
func FormatParameters(parameters int64) string {
	switch {
	case parameters >= 1_000_000_000:
		return fmt.Sprintf("%dB", parameters/1_000_000_000)
	case parameters >= 1_000_000:
		return fmt.Sprintf("%dM", parameters/1_000_000)
	default:
		return fmt.Sprintf("%d", parameters)
	}
}
