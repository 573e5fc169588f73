// Package report renders aggregated summaries into human-readable artifacts:
// a markdown report mirroring the structure of the JSON summary, and an HTML
// rendering of the same markdown.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"oracle/domain/report"
	"oracle/domain/simulation"
)

// RenderMarkdown produces the summary report. Rendering is deterministic for
// a given summary: categories and top lists are already ordered by the
// aggregator, and this layer adds no ordering of its own.
func RenderMarkdown(s *report.Summary) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s Simulation Report\n\n", strings.ToUpper(s.Domain))
	if !s.GeneratedAt.IsZero() {
		fmt.Fprintf(&b, "Generated: %s\n\n", s.GeneratedAt.String())
	}
	if s.RunID != "" {
		fmt.Fprintf(&b, "Run: `%s`\n\n", s.RunID)
	}

	fmt.Fprintf(&b, "## Overview\n\n")
	fmt.Fprintf(&b, "- Total simulations: **%d**\n", s.Total)
	fmt.Fprintf(&b, "- Degraded: **%d**\n", s.Degraded)
	fmt.Fprintf(&b, "- Confidence/priority correlation: **%.2f**\n\n", s.ConfidencePriorityCorr)

	for _, cat := range s.Categories {
		fmt.Fprintf(&b, "## Category: %s\n\n", cat.Category)
		b.WriteString("| Metric | Value |\n|---|---|\n")
		fmt.Fprintf(&b, "| Total | %d |\n", cat.Total)
		fmt.Fprintf(&b, "| Positive | %d (%s) |\n", cat.Positive, pct(cat.Positive, cat.Total))
		fmt.Fprintf(&b, "| Negative | %d (%s) |\n", cat.Negative, pct(cat.Negative, cat.Total))
		fmt.Fprintf(&b, "| Neutral | %d (%s) |\n", cat.Neutral, pct(cat.Neutral, cat.Total))
		fmt.Fprintf(&b, "| Degraded | %d |\n", cat.Degraded)
		fmt.Fprintf(&b, "| Avg confidence | %.2f |\n", cat.AvgConfidence)
		fmt.Fprintf(&b, "| Avg priority | %.1f |\n", cat.AvgPriority)
		fmt.Fprintf(&b, "| P95 priority | %.1f |\n\n", cat.P95Priority)

		if len(cat.TopN) > 0 {
			fmt.Fprintf(&b, "### Top by priority\n\n")
			for i, r := range cat.TopN {
				fmt.Fprintf(&b, "%d. %s **[%d]** %s %s\n", i+1, outcomeIcon(r.Outcome), r.PriorityScore, r.SimulationID, r.Hypothesis)
			}
			b.WriteString("\n")
		}

		if len(cat.AggregatedInsights) > 0 {
			fmt.Fprintf(&b, "### Recurring insights\n\n")
			for _, ic := range cat.AggregatedInsights {
				fmt.Fprintf(&b, "- %s (x%d)\n", ic.Insight, ic.Count)
			}
			b.WriteString("\n")
		}
	}

	if len(s.OverallTop) > 0 {
		fmt.Fprintf(&b, "## Overall top priorities\n\n")
		for i, r := range s.OverallTop {
			fmt.Fprintf(&b, "%d. %s **[%d]** (%s) %s\n", i+1, outcomeIcon(r.Outcome), r.PriorityScore, r.Category, r.Hypothesis)
		}
		b.WriteString("\n")
	}

	return []byte(b.String())
}

// RenderHTML converts the markdown report into a standalone HTML document
func RenderHTML(s *report.Summary) []byte {
	md := RenderMarkdown(s)

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{
		Flags: mdhtml.CommonFlags | mdhtml.CompletePage,
		Title: fmt.Sprintf("%s Simulation Report", strings.ToUpper(s.Domain)),
	})
	return markdown.ToHTML(md, p, renderer)
}

func pct(part, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(part)/float64(total)*100)
}

func outcomeIcon(o simulation.Outcome) string {
	switch o {
	case simulation.OutcomePositive:
		return "(+)"
	case simulation.OutcomeNegative:
		return "(-)"
	default:
		return "(o)"
	}
}
