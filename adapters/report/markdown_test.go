package report

import (
	"strings"
	"testing"

	"oracle/domain/report"
	"oracle/domain/simulation"
)

func sampleSummary() *report.Summary {
	return &report.Summary{
		Domain:   "business",
		Total:    3,
		Degraded: 1,
		Categories: []report.CategoryReport{
			{
				Category:      "pricing",
				Total:         3,
				Positive:      2,
				Neutral:       1,
				Degraded:      1,
				AvgConfidence: 0.72,
				AvgPriority:   61.5,
				P95Priority:   90,
				TopN: []simulation.Result{
					{SimulationID: "ORC-BUS-PRI-0002", Hypothesis: "Usage pricing grows ARPU.", Outcome: simulation.OutcomePositive, PriorityScore: 90},
					{SimulationID: "ORC-BUS-PRI-0001", Hypothesis: "Annual plans cut churn.", Outcome: simulation.OutcomeNegative, PriorityScore: 55},
				},
				AggregatedInsights: []report.InsightCount{
					{Insight: "pricing is under-tested", Count: 2},
				},
			},
		},
		OverallTop: []simulation.Result{
			{SimulationID: "ORC-BUS-PRI-0002", Category: "pricing", Hypothesis: "Usage pricing grows ARPU.", Outcome: simulation.OutcomePositive, PriorityScore: 90},
		},
		ConfidencePriorityCorr: 0.41,
	}
}

func TestRenderMarkdown_Sections(t *testing.T) {
	md := string(RenderMarkdown(sampleSummary()))

	for _, want := range []string{
		"# BUSINESS Simulation Report",
		"## Category: pricing",
		"| Positive | 2 (67%) |",
		"| Degraded | 1 |",
		"| Avg confidence | 0.72 |",
		"### Top by priority",
		"1. (+) **[90]** ORC-BUS-PRI-0002",
		"2. (-) **[55]** ORC-BUS-PRI-0001",
		"pricing is under-tested (x2)",
		"## Overall top priorities",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown missing %q\n---\n%s", want, md)
		}
	}
}

func TestRenderMarkdown_PriorityScoresRenderAsIntegers(t *testing.T) {
	md := string(RenderMarkdown(sampleSummary()))
	if strings.Contains(md, "%!") {
		t.Errorf("formatting directive leaked into output:\n%s", md)
	}
	for _, want := range []string{"**[90]**", "**[55]**"} {
		if !strings.Contains(md, want) {
			t.Errorf("priority score not rendered as integer, missing %q", want)
		}
	}
}

func TestRenderMarkdown_Deterministic(t *testing.T) {
	s := sampleSummary()
	if string(RenderMarkdown(s)) != string(RenderMarkdown(s)) {
		t.Error("same summary rendered differently")
	}
}

func TestRenderMarkdown_EmptySummary(t *testing.T) {
	md := string(RenderMarkdown(&report.Summary{Domain: "empty"}))
	if !strings.Contains(md, "Total simulations: **0**") {
		t.Errorf("empty summary should still render an overview:\n%s", md)
	}
	if strings.Contains(md, "### Top by priority") {
		t.Error("no top section expected for an empty summary")
	}
}

func TestRenderHTML(t *testing.T) {
	html := string(RenderHTML(sampleSummary()))
	if !strings.Contains(html, "<html>") && !strings.Contains(html, "<!DOCTYPE") {
		t.Errorf("expected a complete HTML page, got:\n%.200s", html)
	}
	if !strings.Contains(html, "BUSINESS Simulation Report") {
		t.Error("report title missing from HTML")
	}
}
