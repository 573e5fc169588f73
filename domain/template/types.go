// Package template holds the in-memory representation of a simulation domain:
// the master prompt, per-category prompt fragments and target counts, and the
// per-category hypothesis lists.
package template

import (
	"fmt"
	"sort"
	"strings"
)

// Template describes everything needed to run one domain
type Template struct {
	Name         string                  `json:"name"`
	Description  string                  `json:"description,omitempty"`
	MasterPrompt string                  `json:"master_prompt"`
	Categories   map[string]CategorySpec `json:"categories"`
	Hypotheses   map[string][]string     `json:"hypotheses"`
}

// CategorySpec holds the per-category prompt fragment and target count
type CategorySpec struct {
	Prompt string `json:"prompt"`
	Count  int    `json:"count"`
}

// Validate checks the structural invariants:
//   - every category referenced in Hypotheses exists in Categories
//   - every hypothesis list is non-empty
//   - every category count is positive
func (t *Template) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("template name is required")
	}
	for name, spec := range t.Categories {
		if spec.Count <= 0 {
			return fmt.Errorf("category %q has non-positive count %d", name, spec.Count)
		}
	}
	for name, hyps := range t.Hypotheses {
		if _, ok := t.Categories[name]; !ok {
			return fmt.Errorf("hypotheses reference unknown category %q", name)
		}
		if len(hyps) == 0 {
			return fmt.Errorf("category %q has an empty hypothesis list", name)
		}
		for i, h := range hyps {
			if strings.TrimSpace(h) == "" {
				return fmt.Errorf("category %q hypothesis %d is blank", name, i+1)
			}
		}
	}
	return nil
}

// CategoryNames returns the categories that have hypotheses, sorted for
// deterministic iteration.
func (t *Template) CategoryNames() []string {
	names := make([]string, 0, len(t.Hypotheses))
	for name := range t.Hypotheses {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SelectHypotheses returns the first min(count, available) hypotheses for a
// category in listed order. A countOverride > 0 replaces the category's own
// count. Order is significant: callers rely on it for deterministic
// simulation IDs.
func (t *Template) SelectHypotheses(category string, countOverride int) []string {
	hyps, ok := t.Hypotheses[category]
	if !ok {
		return nil
	}

	count := t.Categories[category].Count
	if countOverride > 0 {
		count = countOverride
	}
	if count > len(hyps) {
		count = len(hyps)
	}
	return hyps[:count]
}

// CategoryPrompt returns the prompt fragment for a category, or empty when
// the category is unknown.
func (t *Template) CategoryPrompt(category string) string {
	return t.Categories[category].Prompt
}
