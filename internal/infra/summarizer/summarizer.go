// Package summarizer synthesizes a unified answer from the per-worker
// responses a dispatch collected, falling back to the best individual
// response whenever local summarization produces nothing usable.
package summarizer

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/fogmesh/fogllm/internal/domain"
	"github.com/fogmesh/fogllm/internal/infra/catalog"
)

// PreferredModel is the fixed, small, fast model summarization prefers
// when it is present in the catalog (spec §4.6).
const PreferredModel = "gemma3:1b"

// Contribution is one worker's finished response, as handed to the
// summarizer by the dispatch engine.
type Contribution struct {
	WorkerID       string
	Model          string
	Score          float64
	ResponseText   string
	ProcessingTime time.Duration
}

// Summarizer builds a unified response from a set of contributions.
type Summarizer struct {
	engine  domain.SummaryEngine
	catalog *catalog.Catalog
	logger  *log.Logger
}

func New(engine domain.SummaryEngine, cat *catalog.Catalog, logger *log.Logger) *Summarizer {
	if logger == nil {
		logger = log.Default()
	}
	return &Summarizer{engine: engine, catalog: cat, logger: logger}
}

// Summarize implements spec §4.6 end to end: build the prompt, pick a
// summarization model, attempt it, fall back to the best client's
// response verbatim, then append the processing-details footer. It
// never returns an error — summarization degrades, it does not fail
// the request.
func (s *Summarizer) Summarize(ctx context.Context, contributions []Contribution) string {
	if len(contributions) == 0 {
		return "No successful responses from workers."
	}

	sorted := append([]Contribution(nil), contributions...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	bestClient := sorted[0]

	prompt := s.buildPrompt(contributions)
	model := s.chooseSummaryModel()

	body, method := "", ""
	text, err := s.engine.Summarize(ctx, model, prompt)
	if err != nil {
		s.logger.Printf("[summarizer] SUMMARIZER_FAILED model=%s: %v", model, err)
	}
	if strings.TrimSpace(text) != "" {
		body, method = strings.TrimSpace(text), "Local Summarization"
	} else {
		body, method = bestClient.ResponseText, "Best Client"
	}

	return s.formatFinalResponse(contributions, body, method)
}

func (s *Summarizer) buildPrompt(contributions []Contribution) string {
	var b strings.Builder
	b.WriteString("Analyze and synthesize the following AI responses into a comprehensive, unified answer:\n\n")
	for i, c := range contributions {
		params := "Unknown"
		if info, ok := s.catalog.Lookup(c.Model); ok {
			params = domain.FormatParameters(info.Parameters)
		}
		fmt.Fprintf(&b, "Response %d (Model: %s - %s):\n%s\n\n", i+1, c.Model, params, c.ResponseText)
	}
	b.WriteString("Create a unified response that combines the best insights from all models. Focus on accuracy, completeness, and clarity.")
	return b.String()
}

// chooseSummaryModel implements the three-tier selection in spec §4.6:
// the preferred identifier if present, otherwise the catalog's
// highest-complexity model, otherwise the preferred identifier anyway.
func (s *Summarizer) chooseSummaryModel() string {
	if _, ok := s.catalog.Lookup(PreferredModel); ok {
		return PreferredModel
	}
	ranked := s.catalog.SortedByComplexityDesc()
	if len(ranked) > 0 {
		return ranked[0].Name
	}
	return PreferredModel
}

func (s *Summarizer) formatFinalResponse(contributions []Contribution, body, method string) string {
	var b strings.Builder
	b.WriteString(body)
	b.WriteString("\n\n")
	b.WriteString(strings.Repeat("=", 80))
	b.WriteString("\nPROCESSING_DETAILS_START\n")
	b.WriteString(strings.Repeat("=", 80))
	b.WriteString("\n\n")

	byModel := make(map[string][]Contribution)
	var modelOrder []string
	for _, c := range contributions {
		if _, seen := byModel[c.Model]; !seen {
			modelOrder = append(modelOrder, c.Model)
		}
		byModel[c.Model] = append(byModel[c.Model], c)
	}

	fmt.Fprintf(&b, "Models used: %d\n", len(byModel))
	fmt.Fprintf(&b, "Total workers: %d\n", len(contributions))
	fmt.Fprintf(&b, "Summary method: %s\n\n", method)

	var totalTime time.Duration
	for _, model := range modelOrder {
		group := byModel[model]
		params := "Unknown"
		if info, ok := s.catalog.Lookup(model); ok {
			params = domain.FormatParameters(info.Parameters)
		}
		var groupTotal time.Duration
		for _, c := range group {
			groupTotal += c.ProcessingTime
		}
		avg := groupTotal / time.Duration(len(group))

		fmt.Fprintf(&b, "  - %s (%s): %d worker(s), avg %.1fs\n", model, params, len(group), avg.Seconds())
		for _, c := range group {
			fmt.Fprintf(&b, "      %s: %.1fs\n", c.WorkerID, c.ProcessingTime.Seconds())
		}
		totalTime += groupTotal
	}

	fmt.Fprintf(&b, "\nTotal processing: %.1fs | per worker: %.1fs\n", totalTime.Seconds(), totalTime.Seconds()/float64(len(contributions)))
	b.WriteString(strings.Repeat("=", 80))
	b.WriteString("\n")

	return b.String()
}
