package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID        ID
	SimulationID ID
)

func (id RunID) String() string        { return ID(id).String() }
func (id SimulationID) String() string { return ID(id).String() }

// NewRunID creates a fresh run identifier
func NewRunID() RunID {
	return RunID(NewID())
}

// NewSimulationID builds the deterministic simulation identifier
// ORC-<DOM3>-<CAT3>-<NNNN>, where DOM3/CAT3 are the first three letters of
// the domain and category uppercased, and NNNN is the 1-based sequence number
// within the category, zero-padded to four digits.
func NewSimulationID(domain, category string, seq int) SimulationID {
	return SimulationID(fmt.Sprintf("ORC-%s-%s-%04d", prefix3(domain), prefix3(category), seq))
}

func prefix3(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) > 3 {
		s = s[:3]
	}
	return s
}

// ParseSimulationID parses a string into SimulationID
func ParseSimulationID(s string) (SimulationID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("simulation ID cannot be empty")
	}
	return SimulationID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}
