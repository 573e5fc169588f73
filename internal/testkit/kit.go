// Package testkit provides shared fixtures for tests: a canned domain
// template, well-formed model responses, and pre-built results for exercising
// aggregation and rendering without a live model.
package testkit

import (
	"fmt"

	"oracle/domain/core"
	"oracle/domain/simulation"
	"oracle/domain/template"
)

// ValidResponse is a model completion that parses cleanly
const ValidResponse = `{
  "outcome": "positive",
  "confidence": 0.85,
  "priority_score": 75,
  "insights": ["clear demand signal"],
  "recommendations": ["run a pilot"],
  "risks": ["small sample"],
  "summary": "Worth pursuing."
}`

// Template returns a small valid template with two categories
func Template() *template.Template {
	return &template.Template{
		Name:         "business",
		Description:  "fixture template",
		MasterPrompt: "Evaluate the hypothesis.",
		Categories: map[string]template.CategorySpec{
			"growth":  {Prompt: "Focus on growth.", Count: 2},
			"pricing": {Prompt: "Focus on pricing.", Count: 2},
		},
		Hypotheses: map[string][]string{
			"growth":  {"Referrals beat paid ads.", "Localization doubles signups."},
			"pricing": {"Annual plans cut churn.", "Usage pricing grows ARPU."},
		},
	}
}

// Results builds n parsed results for a category with descending priority
func Results(domain, category string, n int) []simulation.Result {
	out := make([]simulation.Result, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, simulation.Result{
			SimulationID:  core.NewSimulationID(domain, category, i+1),
			Domain:        domain,
			Category:      category,
			Hypothesis:    fmt.Sprintf("hypothesis %d", i+1),
			Scenario:      fmt.Sprintf("hypothesis %d", i+1),
			Outcome:       simulation.OutcomePositive,
			Confidence:    0.9 - float64(i)*0.1,
			PriorityScore: 90 - i*10,
			Insights:      []string{"recurring insight"},
			Timestamp:     core.Now(),
		})
	}
	return out
}
