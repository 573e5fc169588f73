package report

import (
	"sort"
	"strings"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"oracle/domain/simulation"
)

// DefaultTopN is the number of results kept in each ranked list
const DefaultTopN = 5

// Aggregator reduces results into category reports and an overall summary.
// Aggregate is pure: inputs are never mutated and repeated calls on the same
// collection yield identical output.
type Aggregator struct {
	TopN int
}

// NewAggregator returns an Aggregator with the default top-N size
func NewAggregator() *Aggregator {
	return &Aggregator{TopN: DefaultTopN}
}

// Aggregate builds the summary for a domain from its per-category results.
// Categories are emitted in sorted name order; within a category the
// original generation order breaks priority ties.
func (a *Aggregator) Aggregate(domain string, resultsByCategory map[string][]simulation.Result) *Summary {
	topN := a.TopN
	if topN <= 0 {
		topN = DefaultTopN
	}

	names := make([]string, 0, len(resultsByCategory))
	for name := range resultsByCategory {
		names = append(names, name)
	}
	sort.Strings(names)

	// GeneratedAt is left to the caller so repeated aggregation of the same
	// collection yields identical output.
	summary := &Summary{
		Domain:     domain,
		Categories: make([]CategoryReport, 0, len(names)),
	}

	var all []simulation.Result
	var confs, prios []float64
	for _, name := range names {
		results := resultsByCategory[name]
		summary.Categories = append(summary.Categories, a.aggregateCategory(name, results, topN))
		summary.Total += len(results)
		for _, r := range results {
			if r.Degraded {
				summary.Degraded++
				continue
			}
			confs = append(confs, r.Confidence)
			prios = append(prios, float64(r.PriorityScore))
		}
		all = append(all, results...)
	}

	summary.OverallTop = topByPriority(all, topN)
	if len(confs) >= 2 {
		summary.ConfidencePriorityCorr = stat.Correlation(confs, prios, nil)
	}
	return summary
}

func (a *Aggregator) aggregateCategory(name string, results []simulation.Result, topN int) CategoryReport {
	rep := CategoryReport{
		Category:           name,
		Total:              len(results),
		TopN:               topByPriority(results, topN),
		AggregatedInsights: rankInsights(results),
	}

	var confs, prios []float64
	for _, r := range results {
		switch r.Outcome {
		case simulation.OutcomePositive:
			rep.Positive++
		case simulation.OutcomeNegative:
			rep.Negative++
		default:
			rep.Neutral++
		}
		if r.Degraded {
			rep.Degraded++
		}
		confs = append(confs, r.Confidence)
		prios = append(prios, float64(r.PriorityScore))
	}

	if len(confs) > 0 {
		rep.AvgConfidence, _ = stats.Mean(confs)
		rep.AvgPriority, _ = stats.Mean(prios)
		rep.P95Priority, _ = stats.Percentile(prios, 95)
	}
	return rep
}

// topByPriority sorts descending by priority score with a stable sort, so
// ties keep their original generation order, and takes the first n.
func topByPriority(results []simulation.Result, n int) []simulation.Result {
	sorted := make([]simulation.Result, len(results))
	copy(sorted, results)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriorityScore > sorted[j].PriorityScore
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// rankInsights counts normalized (trimmed, case-folded) insight strings and
// ranks by descending frequency, first-seen order breaking ties.
func rankInsights(results []simulation.Result) []InsightCount {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	var order []string

	pos := 0
	for _, r := range results {
		for _, raw := range r.Insights {
			key := strings.ToLower(strings.TrimSpace(raw))
			if key == "" {
				continue
			}
			if _, ok := counts[key]; !ok {
				firstSeen[key] = pos
				order = append(order, key)
			}
			counts[key]++
			pos++
		}
	}

	ranked := make([]InsightCount, 0, len(order))
	for _, key := range order {
		ranked = append(ranked, InsightCount{Insight: key, Count: counts[key]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return firstSeen[ranked[i].Insight] < firstSeen[ranked[j].Insight]
	})
	return ranked
}
