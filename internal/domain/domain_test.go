package domain

import "testing"

// ─── Complexity Rank Tests ──────────────────────────────────────────────────

func TestComplexityRank(t *testing.T) {
	tests := []struct {
		name       string
		parameters int64
		want       int32
	}{
		{"70B exactly", 70_000_000_000, 10},
		{"above 70B", 405_000_000_000, 10},
		{"30B", 30_000_000_000, 9},
		{"13B", 13_000_000_000, 8},
		{"8B", 8_000_000_000, 7},
		{"7B", 7_000_000_000, 6},
		{"3B", 3_000_000_000, 5},
		{"1B", 1_000_000_000, 4},
		{"500M", 500_000_000, 3},
		{"100M", 100_000_000, 2},
		{"below 100M", 50_000_000, 1},
		{"zero", 0, 1},
		{"just under 7B", 6_999_999_999, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComplexityRank(tt.parameters)
			if got != tt.want {
				t.Errorf("ComplexityRank(%d) = %d, want %d", tt.parameters, got, tt.want)
			}
		})
	}
}

// TestComplexityRank_Monotone checks the testable property from spec §8:
// complexity rank is monotone non-decreasing in parameter count.
func TestComplexityRank_Monotone(t *testing.T) {
	samples := []int64{0, 50_000_000, 100_000_000, 500_000_000, 1_000_000_000,
		3_000_000_000, 7_000_000_000, 8_000_000_000, 13_000_000_000,
		30_000_000_000, 70_000_000_000, 200_000_000_000}

	prev := ComplexityRank(samples[0])
	for _, p := range samples[1:] {
		rank := ComplexityRank(p)
		if rank < prev {
			t.Errorf("ComplexityRank(%d) = %d is less than ComplexityRank of a smaller value (%d)", p, rank, prev)
		}
		prev = rank
	}
}

func TestEstimateSizeGB(t *testing.T) {
	tests := []struct {
		parameters int64
		want       float64
	}{
		{1_000_000_000, 2.0},
		{8_000_000_000, 16.0},
		{0, 0},
	}
	for _, tt := range tests {
		got := EstimateSizeGB(tt.parameters)
		if got != tt.want {
			t.Errorf("EstimateSizeGB(%d) = %v, want %v", tt.parameters, got, tt.want)
		}
	}
}

func TestNewModelInfo(t *testing.T) {
	m := NewModelInfo("llama3.1:8b", 8_000_000_000, false)
	if m.ComplexityScore != 7 {
		t.Errorf("ComplexityScore = %d, want 7", m.ComplexityScore)
	}
	if m.SizeGB != 16.0 {
		t.Errorf("SizeGB = %v, want 16.0", m.SizeGB)
	}
	if m.SupportsVision {
		t.Error("SupportsVision should be false")
	}
}

// ─── Status Tests ───────────────────────────────────────────────────────────

func TestStatus_Terminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusQueued, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusError, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Status(%s).Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestFormatParameters(t *testing.T) {
	tests := []struct {
		parameters int64
		want       string
	}{
		{8_000_000_000, "8B"},
		{350_000_000, "350M"},
		{500, "500"},
	}
	for _, tt := range tests {
		if got := FormatParameters(tt.parameters); got != tt.want {
			t.Errorf("FormatParameters(%d) = %q, want %q", tt.parameters, got, tt.want)
		}
	}
}

func TestFallbackSpecs(t *testing.T) {
	specs := FallbackSpecs()
	if specs.PerformanceScore != 50.0 {
		t.Errorf("fallback PerformanceScore = %v, want 50.0", specs.PerformanceScore)
	}
	if specs.GPUInfo != "Unknown GPU" {
		t.Errorf("fallback GPUInfo = %q, want %q", specs.GPUInfo, "Unknown GPU")
	}
}
