// Package report reduces collections of simulation results into ranked,
// deterministic summaries.
package report

import (
	"oracle/domain/core"
	"oracle/domain/simulation"
)

// CategoryReport is the derived per-category aggregate. It is computed on
// demand from the results collection and never stored as a mutable entity.
type CategoryReport struct {
	Category           string              `json:"category"`
	Total              int                 `json:"total"`
	Positive           int                 `json:"positive"`
	Negative           int                 `json:"negative"`
	Neutral            int                 `json:"neutral"`
	Degraded           int                 `json:"degraded"`
	AvgConfidence      float64             `json:"avg_confidence"`
	AvgPriority        float64             `json:"avg_priority"`
	P95Priority        float64             `json:"p95_priority"`
	TopN               []simulation.Result `json:"top_n"`
	AggregatedInsights []InsightCount      `json:"aggregated_insights"`
}

// InsightCount is one normalized insight and how often it appeared
type InsightCount struct {
	Insight string `json:"insight"`
	Count   int    `json:"count"`
}

// Summary is the full aggregate for one run: per-category reports in
// deterministic order plus the overall top-N across categories.
type Summary struct {
	Domain      string              `json:"domain"`
	RunID       core.RunID          `json:"run_id,omitempty"`
	GeneratedAt core.Timestamp      `json:"generated_at"`
	Total       int                 `json:"total"`
	Degraded    int                 `json:"degraded"`
	Categories  []CategoryReport    `json:"categories"`
	OverallTop  []simulation.Result `json:"overall_top"`

	// ConfidencePriorityCorr is the Pearson correlation between confidence
	// and priority score across all non-degraded results, or 0 when fewer
	// than two results are available.
	ConfidencePriorityCorr float64 `json:"confidence_priority_corr"`
}
