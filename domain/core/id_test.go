package core

import (
	"testing"
)

// TestNewIDUniqueness tests that NewID generates unique identifiers
func TestNewIDUniqueness(t *testing.T) {
	const numIDs = 10000

	ids := make(map[ID]bool, numIDs)
	for i := 0; i < numIDs; i++ {
		id := NewID()
		if id.IsEmpty() {
			t.Errorf("Generated empty ID at iteration %d", i)
		}
		if ids[id] {
			t.Errorf("Generated duplicate ID: %s", id)
		}
		ids[id] = true
	}

	if len(ids) != numIDs {
		t.Errorf("Expected %d unique IDs, got %d", numIDs, len(ids))
	}
}

// TestParseConcernID tests normalization of concern tokens
func TestParseConcernID(t *testing.T) {
	id, err := ParseConcernID("  clabsi ")
	if err != nil {
		t.Fatalf("ParseConcernID failed: %v", err)
	}
	if id != ConcernID("CLABSI") {
		t.Errorf("Expected normalized CLABSI, got %s", id)
	}

	if _, err := ParseConcernID("   "); err == nil {
		t.Error("Expected error for blank concern")
	}
}

// TestParsePlanID tests empty rejection
func TestParsePlanID(t *testing.T) {
	if _, err := ParsePlanID(""); err == nil {
		t.Error("Expected error for empty plan ID")
	}
	id, err := ParsePlanID("plan-123")
	if err != nil {
		t.Fatalf("ParsePlanID failed: %v", err)
	}
	if id.String() != "plan-123" {
		t.Errorf("Expected plan-123, got %s", id)
	}
}
