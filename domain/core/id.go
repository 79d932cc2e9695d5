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
	// Use UUID v7 for time-ordered, sortable IDs
	// Falls back to v4 if v7 is not available (for compatibility)
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
	PlanID     ID
	TaskID     ID
	RunID      ID
	ConcernID  ID
	PromptID   ID
	EvalCaseID ID
)

// String conversions for domain IDs
func (id PlanID) String() string     { return ID(id).String() }
func (id TaskID) String() string     { return ID(id).String() }
func (id RunID) String() string      { return ID(id).String() }
func (id ConcernID) String() string  { return ID(id).String() }
func (id PromptID) String() string   { return ID(id).String() }
func (id EvalCaseID) String() string { return ID(id).String() }

// ParsePlanID parses a string into PlanID
func ParsePlanID(s string) (PlanID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("plan ID cannot be empty")
	}
	return PlanID(s), nil
}

// ParseTaskID parses a string into TaskID
func ParseTaskID(s string) (TaskID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("task ID cannot be empty")
	}
	return TaskID(s), nil
}

// ParseRunID parses a string into RunID
func ParseRunID(s string) (RunID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("run ID cannot be empty")
	}
	return RunID(s), nil
}

// ParseConcernID parses a string into ConcernID. Concern tokens are matched
// case-insensitively everywhere, so they are normalized to upper case once here.
func ParseConcernID(s string) (ConcernID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("concern ID cannot be empty")
	}
	return ConcernID(strings.ToUpper(s)), nil
}
