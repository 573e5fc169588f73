// Package simulation defines the request/result types for one
// hypothesis-evaluation round trip against the model.
package simulation

import (
	"strings"

	"oracle/domain/core"
)

// Outcome is the model's verdict on a hypothesis
type Outcome string

const (
	OutcomePositive Outcome = "positive"
	OutcomeNegative Outcome = "negative"
	OutcomeNeutral  Outcome = "neutral"
)

// ParseOutcome maps free-form text onto an Outcome, case-insensitively.
// The second return reports whether the input was a recognized keyword;
// unrecognized input maps to neutral.
func ParseOutcome(s string) (Outcome, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positive":
		return OutcomePositive, true
	case "negative":
		return OutcomeNegative, true
	case "neutral":
		return OutcomeNeutral, true
	default:
		return OutcomeNeutral, false
	}
}

// Request identifies one pending simulation. Immutable once created.
type Request struct {
	SimulationID core.SimulationID
	Domain       string
	Category     string
	Hypothesis   string
}

// Result is the validated record produced for one request. Never mutated
// after creation; the runner owns the collection it is appended to.
type Result struct {
	SimulationID    core.SimulationID `json:"simulation_id"`
	Domain          string            `json:"domain"`
	Category        string            `json:"category"`
	Hypothesis      string            `json:"hypothesis"`
	Scenario        string            `json:"scenario"`
	Outcome         Outcome           `json:"outcome"`
	Confidence      float64           `json:"confidence"`
	PriorityScore   int               `json:"priority_score"`
	Insights        []string          `json:"insights"`
	Recommendations []string          `json:"recommendations"`
	Risks           []string          `json:"risks"`
	Dependencies    []string          `json:"dependencies"`
	Degraded        bool              `json:"degraded"`
	RawResponse     string            `json:"raw_response,omitempty"`
	Timestamp       core.Timestamp    `json:"timestamp"`
	DurationMs      int64             `json:"duration_ms"`
	Metadata        map[string]any    `json:"metadata,omitempty"`
}

const scenarioMaxLen = 200

// NewScenario derives the scenario field from a hypothesis (first 200 chars)
func NewScenario(hypothesis string) string {
	if len(hypothesis) > scenarioMaxLen {
		return hypothesis[:scenarioMaxLen]
	}
	return hypothesis
}

// ClampConfidence forces a confidence value into [0,1]
func ClampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampPriority forces a priority score into [0,100]
func ClampPriority(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// NewDegradedResult builds the placeholder recorded when every attempt for a
// request has failed: neutral outcome, zero confidence, and a risk entry
// naming the failure. This keeps the one-result-per-hypothesis guarantee.
func NewDegradedResult(req Request, reason string) Result {
	return Result{
		SimulationID:    req.SimulationID,
		Domain:          req.Domain,
		Category:        req.Category,
		Hypothesis:      req.Hypothesis,
		Scenario:        NewScenario(req.Hypothesis),
		Outcome:         OutcomeNeutral,
		Confidence:      0,
		PriorityScore:   0,
		Insights:        []string{},
		Recommendations: []string{},
		Risks:           []string{"simulation degraded: " + reason},
		Dependencies:    []string{},
		Degraded:        true,
		Timestamp:       core.Now(),
	}
}
