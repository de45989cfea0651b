package summarizer

import (
	"context"
	"errors"
	"log"
	"strings"
	"testing"
	"time"

	"github.com/fogmesh/fogllm/internal/infra/catalog"
)

type stubEngine struct {
	text string
	err  error
}

func (s stubEngine) Summarize(ctx context.Context, model, prompt string) (string, error) {
	return s.text, s.err
}

func discardLogger() *log.Logger {
	return log.New(discardWriter{}, "", 0)
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

func sampleContributions() []Contribution {
	return []Contribution{
		{WorkerID: "w1", Model: "llama3.1:8b", Score: 90, ResponseText: "from the big model", ProcessingTime: 3 * time.Second},
		{WorkerID: "w2", Model: "llama3.2:1b", Score: 50, ResponseText: "from the small model", ProcessingTime: 1 * time.Second},
	}
}

func TestSummarizeUsesLocalSummaryWhenPresent(t *testing.T) {
	cat := catalog.New()
	s := New(stubEngine{text: "a unified answer"}, cat, discardLogger())

	out := s.Summarize(context.Background(), sampleContributions())
	if !strings.HasPrefix(out, "a unified answer") {
		t.Errorf("expected output to start with the local summary, got: %s", out)
	}
	if !strings.Contains(out, "Local Summarization") {
		t.Error("expected footer to credit Local Summarization")
	}
}

func TestSummarizeFallsBackToBestClientOnEmptyOutput(t *testing.T) {
	cat := catalog.New()
	s := New(stubEngine{text: "   "}, cat, discardLogger())

	out := s.Summarize(context.Background(), sampleContributions())
	if !strings.HasPrefix(out, "from the big model") {
		t.Errorf("expected fallback to the highest-scored worker's response, got: %s", out)
	}
	if !strings.Contains(out, "Best Client") {
		t.Error("expected footer to credit Best Client")
	}
}

func TestSummarizeFallsBackOnEngineError(t *testing.T) {
	cat := catalog.New()
	s := New(stubEngine{err: errors.New("model crashed")}, cat, discardLogger())

	out := s.Summarize(context.Background(), sampleContributions())
	if !strings.Contains(out, "Best Client") {
		t.Error("expected degrade-to-best-client on engine error")
	}
}

func TestSummarizeEmptyContributions(t *testing.T) {
	cat := catalog.New()
	s := New(stubEngine{text: "x"}, cat, discardLogger())

	out := s.Summarize(context.Background(), nil)
	if !strings.Contains(out, "No successful responses") {
		t.Errorf("expected a no-responses message, got: %s", out)
	}
}

func TestChooseSummaryModelPrefersFixedIdentifier(t *testing.T) {
	cat := catalog.New()
	cat.AddCustom(PreferredModel, 1_000_000_000, false)
	s := New(stubEngine{}, cat, discardLogger())

	if got := s.chooseSummaryModel(); got != PreferredModel {
		t.Errorf("chooseSummaryModel() = %q, want %q", got, PreferredModel)
	}
}

func TestChooseSummaryModelFallsBackToMaxComplexity(t *testing.T) {
	cat := catalog.New()
	cat.AddCustom("heaviest:70b", 70_000_000_000, false)
	s := New(stubEngine{}, cat, discardLogger())

	got := s.chooseSummaryModel()
	if got != "heaviest:70b" {
		t.Errorf("chooseSummaryModel() = %q, want the max-complexity model", got)
	}
}

func TestFormatFinalResponseIncludesPerWorkerTimes(t *testing.T) {
	cat := catalog.New()
	s := New(stubEngine{}, cat, discardLogger())

	out := s.formatFinalResponse(sampleContributions(), "body", "Best Client")
	if !strings.Contains(out, "w1:") || !strings.Contains(out, "w2:") {
		t.Errorf("expected per-worker processing times in footer, got: %s", out)
	}
}
