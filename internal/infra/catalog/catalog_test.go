package catalog

import "testing"

func TestParseKnownFamilies(t *testing.T) {
	tests := []struct {
		identifier string
		wantParams int64
		wantVision bool
	}{
		{"llama3.2:3b", 3_000_000_000, false},
		{"llama3.1:8b", 8_000_000_000, false},
		{"llama2:13b", 13_000_000_000, false},
		{"mistral:7b", 7_000_000_000, false},
		{"mixtral:8x7b", 56_000_000_000, false},
		{"codellama:34b", 34_000_000_000, false},
		{"gemma2:9b", 9_000_000_000, false},
		{"phi3:14b", 14_000_000_000, false},
		{"qwen2.5:32b", 32_000_000_000, false},
		{"llava:13b", 13_000_000_000, true},
		{"bakllava", 7_000_000_000, true},
		{"llama3.2-vision:11b", 11_000_000_000, true},
	}
	for _, tt := range tests {
		t.Run(tt.identifier, func(t *testing.T) {
			info, ok := Parse(tt.identifier)
			if !ok {
				t.Fatalf("Parse(%q) failed to match", tt.identifier)
			}
			if info.Parameters != tt.wantParams {
				t.Errorf("Parameters = %d, want %d", info.Parameters, tt.wantParams)
			}
			if info.SupportsVision != tt.wantVision {
				t.Errorf("SupportsVision = %v, want %v", info.SupportsVision, tt.wantVision)
			}
		})
	}
}

func TestParseGemma3VisionThreshold(t *testing.T) {
	small, ok := Parse("gemma3:1b")
	if !ok {
		t.Fatal("Parse(gemma3:1b) failed")
	}
	if small.SupportsVision {
		t.Error("gemma3:1b should not be vision-capable")
	}

	large, ok := Parse("gemma3:12b")
	if !ok {
		t.Fatal("Parse(gemma3:12b) failed")
	}
	if !large.SupportsVision {
		t.Error("gemma3:12b should be vision-capable")
	}
}

func TestParseGenericFallback(t *testing.T) {
	info, ok := Parse("some-custom-9b-model")
	if !ok {
		t.Fatal("Parse should fall back to generic {N}b token scan")
	}
	if info.Parameters != 9_000_000_000 {
		t.Errorf("Parameters = %d, want 9000000000", info.Parameters)
	}
}

func TestParseUnrecognized(t *testing.T) {
	if _, ok := Parse("totally-unknown-model"); ok {
		t.Error("Parse should fail for an identifier with no size hint")
	}
}

func TestCatalogDiscoverMerges(t *testing.T) {
	c := New()
	before := c.Len()

	applied := c.Discover([]string{"llama3.1:8b", "unrecognized-junk", "mistral:7b"})
	if len(applied) != 2 {
		t.Fatalf("Discover applied %d models, want 2", len(applied))
	}
	if c.Len() <= before {
		t.Errorf("catalog did not grow: before=%d after=%d", before, c.Len())
	}

	if _, ok := c.Lookup("mistral:7b"); !ok {
		t.Error("mistral:7b should be present after Discover")
	}
}

func TestCatalogAddCustom(t *testing.T) {
	c := New()
	info := c.AddCustom("house-special:42b", 42_000_000_000, false)
	if info.ComplexityScore != 9 {
		t.Errorf("ComplexityScore = %d, want 9", info.ComplexityScore)
	}
	got, ok := c.Lookup("house-special:42b")
	if !ok || got.Parameters != 42_000_000_000 {
		t.Errorf("Lookup did not return the custom model: %+v ok=%v", got, ok)
	}
}

func TestSortedByParametersAscending(t *testing.T) {
	c := New()
	models := c.SortedByParameters()
	for i := 1; i < len(models); i++ {
		if models[i-1].Parameters > models[i].Parameters {
			t.Fatalf("not ascending at index %d: %v before %v", i, models[i-1], models[i])
		}
	}
}

func TestSortedByComplexityDescending(t *testing.T) {
	c := New()
	c.AddCustom("tiny:100m", 100_000_000, false)
	models := c.SortedByComplexityDesc()
	for i := 1; i < len(models); i++ {
		if models[i-1].ComplexityScore < models[i].ComplexityScore {
			t.Fatalf("not descending at index %d: %v before %v", i, models[i-1], models[i])
		}
	}
}

func TestStatsReflectsCatalog(t *testing.T) {
	c := New()
	stats := c.Stats()
	if stats.TotalModels != c.Len() {
		t.Errorf("Stats.TotalModels = %d, want %d", stats.TotalModels, c.Len())
	}
}
