package plan

import (
	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
)

// GenerationMode selects scoring baselines and aggregation weights.
type GenerationMode string

const (
	// ModeFast is the default generation mode.
	ModeFast GenerationMode = "fast"
	// ModeResearch is the research-augmented mode: provenance-backed
	// dimensions are scored and weighted.
	ModeResearch GenerationMode = "research"
)

// Category determines which parsimony target applies to the plan.
type Category string

const (
	// CategorySignalSurveillance plans are driven by a signal battery
	// (target 15-25 signals).
	CategorySignalSurveillance Category = "signal_surveillance"
	// CategoryQuestionBattery plans are driven by abstraction questions
	// (target 3-7 questions).
	CategoryQuestionBattery Category = "question_battery"
)

// Signal is one surveillance trigger generated for the plan.
type Signal struct {
	ID        string `json:"id" validate:"required"`
	Name      string `json:"name" validate:"required"`
	Trigger   string `json:"trigger" validate:"required"`
	Category  string `json:"category,omitempty"`
	Rationale string `json:"rationale,omitempty"`
	// Sourced marks signals backed by a cited criteria source.
	Sourced bool `json:"sourced,omitempty"`
}

// Question is one abstraction question generated for the plan.
type Question struct {
	ID     string `json:"id" validate:"required"`
	Text   string `json:"text" validate:"required"`
	Intent string `json:"intent,omitempty"`
}

// CriteriaEvaluation summarizes how the concern's criteria mapped onto the case.
type CriteriaEvaluation struct {
	Determination    string          `json:"determination" validate:"required"`
	Confidence       float64         `json:"confidence" validate:"gte=0,lte=1"`
	CriteriaMet      map[string]bool `json:"criteria_met,omitempty"`
	TotalCriteria    int             `json:"total_criteria" validate:"gte=0"`
	CriteriaMetCount int             `json:"criteria_met_count" validate:"gte=0"`
}

// Exclusion records one exclusion-rule check.
type Exclusion struct {
	Name      string `json:"name" validate:"required"`
	Status    string `json:"status" validate:"oneof=applies does_not_apply indeterminate"`
	Rationale string `json:"rationale,omitempty"`
}

// ResearchRef ties a plan element back to a specification section.
type ResearchRef struct {
	Title       string `json:"title"`
	URL         string `json:"url,omitempty"`
	SpecSection string `json:"spec_section,omitempty"`
	Implemented bool   `json:"implemented"`
}

// Provenance carries the evidence trail behind the plan content.
type Provenance struct {
	Sources        []string      `json:"sources,omitempty"`
	ReferenceTools []string      `json:"reference_tools,omitempty"`
	ResearchRefs   []ResearchRef `json:"research_refs,omitempty"`
}

// Metadata identifies the plan and the request that produced it.
type Metadata struct {
	PlanningID  core.PlanID         `json:"planning_id" validate:"required"`
	Concern     core.ConcernID      `json:"concern" validate:"required"`
	Domain      archetype.Domain    `json:"domain" validate:"required"`
	Archetype   archetype.Archetype `json:"archetype" validate:"required"`
	Mode        GenerationMode      `json:"mode" validate:"oneof=fast research"`
	GeneratedAt core.Timestamp      `json:"generated_at"`
	// PlanConfidence is informational only. It does not feed the quality
	// verdict or overall validity.
	PlanConfidence float64 `json:"plan_confidence" validate:"gte=0,lte=1"`
}

// Plan is the canonical assembled surveillance configuration. Version-specific
// shapes are converted to this exactly once at the decode boundary; nothing
// downstream probes for alternately-named fields.
type Plan struct {
	Metadata   Metadata           `json:"metadata" validate:"required"`
	Category   Category           `json:"category" validate:"oneof=signal_surveillance question_battery"`
	Signals    []Signal           `json:"signals,omitempty" validate:"dive"`
	Questions  []Question         `json:"questions,omitempty" validate:"dive"`
	Narrative  string             `json:"narrative,omitempty"`
	Criteria   CriteriaEvaluation `json:"criteria_evaluation"`
	Exclusions []Exclusion        `json:"exclusion_analysis,omitempty" validate:"dive"`
	Provenance Provenance         `json:"provenance"`
}

// CountForParsimony returns the count the parsimony dimension scores against.
func (p *Plan) CountForParsimony() int {
	if p.Category == CategoryQuestionBattery {
		return len(p.Questions)
	}
	return len(p.Signals)
}
