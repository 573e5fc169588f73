// Package parse extracts a structured simulation payload from raw model
// output. Extraction is a two-stage pipeline: a strict JSON-block attempt
// first, then a lenient labeled-line extractor. Extractors return
// success/failure; the first success wins.
package parse

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"oracle/domain/simulation"
	"oracle/internal/errors"
)

// Payload is the field set extracted from one model response. The runner
// combines it with the originating request to build a simulation.Result.
type Payload struct {
	Outcome         simulation.Outcome
	Confidence      float64
	PriorityScore   int
	Insights        []string
	Recommendations []string
	Risks           []string
	Dependencies    []string
	Summary         string
}

// Defaults applied when a response carries an outcome but omits a field
const (
	defaultConfidence = 0.5
	defaultPriority   = 50
)

type extractor struct {
	name string
	fn   func(string) (*Payload, bool)
}

var extractors = []extractor{
	{name: "strict_json", fn: extractStrictJSON},
	{name: "labeled_lines", fn: extractLabeledLines},
}

// Parse runs the extraction pipeline over raw model text. It fails with a
// PARSE_ERROR only when no outcome-bearing content can be located at all;
// an unrecognized outcome value inside otherwise structured content is a
// valid neutral result, not a failure.
func Parse(raw string) (*Payload, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, errors.ParseError("empty model response")
	}

	for _, ex := range extractors {
		if p, ok := ex.fn(trimmed); ok {
			normalize(p)
			return p, nil
		}
	}
	return nil, errors.ParseError("no outcome-bearing content found in model response")
}

// extractStrictJSON locates the outermost JSON object in the response and
// decodes the expected fields from it. Succeeds when the object parses and
// carries at least one recognized field.
func extractStrictJSON(raw string) (*Payload, bool) {
	cleaned := stripFences(raw)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start < 0 || end <= start {
		return nil, false
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &fields); err != nil {
		return nil, false
	}

	recognized := false
	for _, key := range []string{"outcome", "confidence", "priority_score", "priority", "insights", "recommendations", "risks"} {
		if _, ok := fields[key]; ok {
			recognized = true
			break
		}
	}
	if !recognized {
		return nil, false
	}

	outcome, _ := simulation.ParseOutcome(getString(fields, "outcome"))

	confidence := defaultConfidence
	if v, ok := getFloat(fields, "confidence"); ok {
		confidence = v
	}

	priority := defaultPriority
	if v, ok := getFloat(fields, "priority_score"); ok {
		priority = int(v)
	} else if v, ok := getFloat(fields, "priority"); ok {
		priority = int(v)
	}

	return &Payload{
		Outcome:         outcome,
		Confidence:      confidence,
		PriorityScore:   priority,
		Insights:        getStringList(fields, "insights"),
		Recommendations: getStringList(fields, "recommendations"),
		Risks:           getStringList(fields, "risks"),
		Dependencies:    getStringList(fields, "dependencies"),
		Summary:         getString(fields, "summary"),
	}, true
}

var (
	outcomeLineRe    = regexp.MustCompile(`(?i)^\s*(?:outcome|verdict)\s*[:\-]\s*(.+)$`)
	confidenceLineRe = regexp.MustCompile(`(?i)^\s*confidence\b[^0-9+-]*([-+]?\d+(?:\.\d+)?)\s*(%)?`)
	priorityLineRe   = regexp.MustCompile(`(?i)^\s*priority(?:[ _]score)?\b[^0-9+-]*([-+]?\d+)`)
	sectionHeaderRe  = regexp.MustCompile(`(?i)^\s*(insights|recommendations|risks|dependencies)\s*:\s*(.*)$`)
	bulletRe         = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+(.*)$`)
)

// extractLabeledLines is the lenient fallback: a line-oriented grammar over
// recognizable labels. Succeeds only when an outcome is located, either via
// an "outcome:"/"verdict:" label or a line led by an outcome keyword.
func extractLabeledLines(raw string) (*Payload, bool) {
	p := &Payload{
		Outcome:       simulation.OutcomeNeutral,
		Confidence:    defaultConfidence,
		PriorityScore: defaultPriority,
	}
	outcomeFound := false
	var section *[]string

	for _, line := range strings.Split(raw, "\n") {
		if m := outcomeLineRe.FindStringSubmatch(line); m != nil {
			if outcome, ok := leadingOutcome(m[1]); ok {
				p.Outcome = outcome
				outcomeFound = true
			}
			section = nil
			continue
		}
		if m := confidenceLineRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				if m[2] == "%" || (v > 1 && v <= 100) {
					v /= 100
				}
				p.Confidence = v
			}
			section = nil
			continue
		}
		if m := priorityLineRe.FindStringSubmatch(line); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				p.PriorityScore = v
			}
			section = nil
			continue
		}
		if m := sectionHeaderRe.FindStringSubmatch(line); m != nil {
			switch strings.ToLower(m[1]) {
			case "insights":
				section = &p.Insights
			case "recommendations":
				section = &p.Recommendations
			case "risks":
				section = &p.Risks
			case "dependencies":
				section = &p.Dependencies
			}
			// Inline content after the header counts as the first entry
			if rest := strings.TrimSpace(m[2]); rest != "" && section != nil {
				*section = append(*section, rest)
			}
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil && section != nil {
			*section = append(*section, m[1])
			continue
		}
		if !outcomeFound {
			if outcome, ok := leadingOutcome(line); ok {
				p.Outcome = outcome
				outcomeFound = true
				section = nil
				continue
			}
		}
		if strings.TrimSpace(line) == "" {
			section = nil
		}
	}

	if !outcomeFound {
		return nil, false
	}
	return p, true
}

// leadingOutcome reports whether the first word of s is an outcome keyword
func leadingOutcome(s string) (simulation.Outcome, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return simulation.OutcomeNeutral, false
	}
	word := s
	if i := strings.IndexAny(s, " \t.,;!"); i >= 0 {
		word = s[:i]
	}
	return simulation.ParseOutcome(word)
}

// stripFences removes markdown code fences wrapping a response
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if i := strings.Index(s, "\n"); i >= 0 {
			s = s[i+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// normalize applies the clamping and list-cleaning rules in place
func normalize(p *Payload) {
	p.Confidence = simulation.ClampConfidence(p.Confidence)
	p.PriorityScore = simulation.ClampPriority(p.PriorityScore)
	p.Insights = cleanList(p.Insights)
	p.Recommendations = cleanList(p.Recommendations)
	p.Risks = cleanList(p.Risks)
	p.Dependencies = cleanList(p.Dependencies)
	p.Summary = strings.TrimSpace(p.Summary)
}

// cleanList trims entries, drops blanks, and de-duplicates within the list
// (case-sensitive, first occurrence kept). Lists are never deduplicated
// across one another.
func cleanList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}

// Helpers for extracting from decoded JSON maps

func getString(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func getFloat(m map[string]any, key string) (float64, bool) {
	switch v := m[key].(type) {
	case float64:
		return v, true
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(v), "%"), 64); err == nil {
			if strings.HasSuffix(strings.TrimSpace(v), "%") {
				f /= 100
			}
			return f, true
		}
	}
	return 0, false
}

func getStringList(m map[string]any, key string) []string {
	raw, ok := m[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
