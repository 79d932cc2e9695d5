package plan

import (
	"encoding/json"
	"fmt"

	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
)

// SchemaVersion tags serialized plan documents.
type SchemaVersion string

const (
	VersionV1 SchemaVersion = "v1"
	VersionV2 SchemaVersion = "v2"
	VersionV9 SchemaVersion = "v9"
)

// versionEnvelope sniffs the schema version before committing to a shape.
type versionEnvelope struct {
	SchemaVersion SchemaVersion `json:"schema_version"`
}

// planV1 is the original flat export: signals inline, no provenance block.
type planV1 struct {
	SchemaVersion SchemaVersion `json:"schema_version"`
	PlanningID    string        `json:"planning_id"`
	Concern       string        `json:"concern"`
	Domain        string        `json:"domain"`
	Archetype     string        `json:"archetype"`
	Signals       []Signal      `json:"signals"`
	Narrative     string        `json:"narrative"`
	Confidence    float64       `json:"confidence"`
}

// planV2 grouped signals and renamed the narrative field.
type planV2 struct {
	SchemaVersion SchemaVersion `json:"schema_version"`
	PlanningID    string        `json:"planning_id"`
	Concern       string        `json:"concern"`
	Domain        string        `json:"domain"`
	Archetype     string        `json:"archetype"`
	SignalGroups  []struct {
		GroupName string   `json:"group_name"`
		Signals   []Signal `json:"signals"`
	} `json:"signal_groups"`
	CaseSummary string              `json:"case_summary"`
	Questions   []Question          `json:"questions"`
	Criteria    CriteriaEvaluation  `json:"criteria_evaluation"`
	Exclusions  []Exclusion         `json:"exclusion_analysis"`
	Confidence  float64             `json:"plan_confidence"`
	Mode        GenerationMode      `json:"mode"`
	Category    Category            `json:"category"`
}

// planV9 is the canonical shape serialized directly.
type planV9 struct {
	SchemaVersion SchemaVersion `json:"schema_version"`
	Plan
}

// Decode converts a serialized plan of any supported schema version into the
// single canonical Plan. The conversion happens here exactly once; an
// unrecognized version is an error, not a reason to probe fields dynamically.
func Decode(data []byte) (*Plan, error) {
	var env versionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode plan envelope: %w", err)
	}

	switch env.SchemaVersion {
	case VersionV1:
		var v1 planV1
		if err := json.Unmarshal(data, &v1); err != nil {
			return nil, fmt.Errorf("decode v1 plan: %w", err)
		}
		return v1.canonical(), nil
	case VersionV2:
		var v2 planV2
		if err := json.Unmarshal(data, &v2); err != nil {
			return nil, fmt.Errorf("decode v2 plan: %w", err)
		}
		return v2.canonical(), nil
	case VersionV9, "":
		// Empty version means a freshly assembled canonical document.
		var v9 planV9
		if err := json.Unmarshal(data, &v9); err != nil {
			return nil, fmt.Errorf("decode v9 plan: %w", err)
		}
		return &v9.Plan, nil
	default:
		return nil, fmt.Errorf("%w: %q", core.ErrUnknownPlanVersion, env.SchemaVersion)
	}
}

// Encode serializes the canonical plan with the current schema version tag.
func Encode(p *Plan) ([]byte, error) {
	return json.MarshalIndent(planV9{SchemaVersion: VersionV9, Plan: *p}, "", "  ")
}

func (v planV1) canonical() *Plan {
	return &Plan{
		Metadata: Metadata{
			PlanningID:     core.PlanID(v.PlanningID),
			Concern:        core.ConcernID(v.Concern),
			Domain:         archetype.Domain(v.Domain),
			Archetype:      archetype.Archetype(v.Archetype),
			Mode:           ModeFast,
			PlanConfidence: v.Confidence,
		},
		Category:  CategorySignalSurveillance,
		Signals:   v.Signals,
		Narrative: v.Narrative,
	}
}

func (v planV2) canonical() *Plan {
	var signals []Signal
	for _, g := range v.SignalGroups {
		signals = append(signals, g.Signals...)
	}
	mode := v.Mode
	if mode == "" {
		mode = ModeFast
	}
	category := v.Category
	if category == "" {
		category = CategorySignalSurveillance
	}
	return &Plan{
		Metadata: Metadata{
			PlanningID:     core.PlanID(v.PlanningID),
			Concern:        core.ConcernID(v.Concern),
			Domain:         archetype.Domain(v.Domain),
			Archetype:      archetype.Archetype(v.Archetype),
			Mode:           mode,
			PlanConfidence: v.Confidence,
		},
		Category:   category,
		Signals:    signals,
		Questions:  v.Questions,
		Narrative:  v.CaseSummary,
		Criteria:   v.Criteria,
		Exclusions: v.Exclusions,
	}
}
