// Package ai composes the prompts sent to the model. Building is pure string
// assembly: deterministic, no truncation, no reordering of inputs.
package ai

import (
	"fmt"
	"strings"
)

// DefaultMasterPrompt is used when a template does not provide one
const DefaultMasterPrompt = `You are a veteran strategy consultant with 20+ years advising
Fortune 500 companies on critical decisions.

## TASK
Analyze and evaluate the given hypothesis from a strategic standpoint.

## ANALYSIS CRITERIA
1. **Desirability** - Does the target audience actually want this?
2. **Feasibility** - Is it technically and operationally possible?
3. **Viability** - Is the business model sustainable?
4. **Differentiation** - How does it stand apart from competitors?
5. **Scalability** - Can it scale?
6. **Risk** - What are the main risks?

## OUTPUT FORMAT (STRICT JSON)
Return JSON only:
{
  "outcome": "positive|negative|neutral",
  "confidence": 0.0-1.0,
  "insights": ["insight1", "insight2", "insight3"],
  "recommendations": ["rec1", "rec2"],
  "risks": ["risk1", "risk2"],
  "priority_score": 1-100,
  "summary": "One-paragraph summary"
}`

// PromptInput carries everything that goes into one simulation prompt
type PromptInput struct {
	MasterPrompt   string
	Domain         string
	Category       string
	CategoryPrompt string
	Hypothesis     string
}

// Build assembles the final prompt: master prompt, domain/category framing,
// the category fragment, and the hypothesis, closed with the instruction to
// answer in JSON. Empty inputs are permitted and simply produce a degenerate
// prompt.
func Build(in PromptInput) string {
	master := in.MasterPrompt
	if master == "" {
		master = DefaultMasterPrompt
	}

	return fmt.Sprintf(`%s

## DOMAIN: %s
## CATEGORY: %s

%s

## HYPOTHESIS
%s

Analyze and respond in JSON format.`,
		master,
		strings.ToUpper(in.Domain),
		in.Category,
		in.CategoryPrompt,
		in.Hypothesis)
}
