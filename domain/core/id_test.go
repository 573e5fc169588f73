package core

import (
	"strings"
	"testing"
)

func TestNewSimulationID_Format(t *testing.T) {
	id := NewSimulationID("business", "pricing", 7)
	if got, want := id.String(), "ORC-BUS-PRI-0007"; got != want {
		t.Errorf("simulation ID = %s, want %s", got, want)
	}
}

func TestNewSimulationID_ShortNames(t *testing.T) {
	// Domains/categories shorter than three letters are used as-is
	id := NewSimulationID("ai", "ml", 12)
	if got, want := id.String(), "ORC-AI-ML-0012"; got != want {
		t.Errorf("simulation ID = %s, want %s", got, want)
	}
}

func TestNewSimulationID_Deterministic(t *testing.T) {
	a := NewSimulationID("substance", "go-to-market", 1)
	b := NewSimulationID("substance", "go-to-market", 1)
	if a != b {
		t.Errorf("same inputs produced different IDs: %s vs %s", a, b)
	}
}

func TestNewRunID_Unique(t *testing.T) {
	seen := make(map[RunID]bool)
	for i := 0; i < 100; i++ {
		id := NewRunID()
		if seen[id] {
			t.Fatalf("duplicate run ID generated: %s", id)
		}
		seen[id] = true
	}
}

func TestNewRunID_Sortable(t *testing.T) {
	// UUID v7 run IDs are time-ordered; later IDs compare greater
	a := NewRunID()
	b := NewRunID()
	if strings.Compare(a.String(), b.String()) > 0 {
		t.Errorf("run IDs not time-ordered: %s > %s", a, b)
	}
}

func TestParseSimulationID_Empty(t *testing.T) {
	if _, err := ParseSimulationID("  "); err == nil {
		t.Error("expected error for empty simulation ID")
	}
}
