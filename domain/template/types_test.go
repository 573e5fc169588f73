package template

import (
	"testing"
)

func testTemplate() *Template {
	return &Template{
		Name:         "business",
		MasterPrompt: "You are a strategist.",
		Categories: map[string]CategorySpec{
			"pricing":      {Prompt: "Focus on pricing.", Count: 3},
			"go-to-market": {Prompt: "Focus on GTM.", Count: 2},
		},
		Hypotheses: map[string][]string{
			"pricing":      {"A", "B", "C", "D"},
			"go-to-market": {"X"},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	if err := testTemplate().Validate(); err != nil {
		t.Fatalf("valid template rejected: %v", err)
	}
}

func TestValidate_UnknownCategory(t *testing.T) {
	tpl := testTemplate()
	tpl.Hypotheses["mystery"] = []string{"H"}
	if err := tpl.Validate(); err == nil {
		t.Error("expected error for hypotheses referencing unknown category")
	}
}

func TestValidate_EmptyHypothesisList(t *testing.T) {
	tpl := testTemplate()
	tpl.Hypotheses["pricing"] = nil
	if err := tpl.Validate(); err == nil {
		t.Error("expected error for empty hypothesis list")
	}
}

func TestValidate_NonPositiveCount(t *testing.T) {
	tpl := testTemplate()
	tpl.Categories["pricing"] = CategorySpec{Prompt: "p", Count: 0}
	if err := tpl.Validate(); err == nil {
		t.Error("expected error for non-positive category count")
	}
}

func TestSelectHypotheses_TakesFirstCountInOrder(t *testing.T) {
	tpl := testTemplate()
	got := tpl.SelectHypotheses("pricing", 0)
	want := []string{"A", "B", "C"}
	if len(got) != len(want) {
		t.Fatalf("selected %d hypotheses, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("hypothesis %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestSelectHypotheses_CountOverride(t *testing.T) {
	tpl := testTemplate()
	if got := tpl.SelectHypotheses("pricing", 2); len(got) != 2 {
		t.Errorf("override count 2 selected %d hypotheses", len(got))
	}
	// Override larger than available clamps to available
	if got := tpl.SelectHypotheses("go-to-market", 10); len(got) != 1 {
		t.Errorf("oversized override selected %d hypotheses, want 1", len(got))
	}
}

func TestCategoryNames_Sorted(t *testing.T) {
	names := testTemplate().CategoryNames()
	if len(names) != 2 || names[0] != "go-to-market" || names[1] != "pricing" {
		t.Errorf("category names = %v, want sorted [go-to-market pricing]", names)
	}
}
