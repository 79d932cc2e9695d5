package task

import (
	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
)

// Type categorizes generation tasks by what they produce.
type Type string

const (
	TypeSignalExtraction   Type = "signal_extraction"
	TypeCriteriaMapping    Type = "criteria_mapping"
	TypeExclusionCheck     Type = "exclusion_check"
	TypeNarrativeSummary   Type = "narrative_summary"
	TypeQuestionGeneration Type = "question_generation"
	TypeReviewerSynthesis  Type = "reviewer_synthesis"
)

// ConsumesNarrative reports whether the task type reads the primary case
// narrative. These tasks fail fast when the narrative context is empty: that
// indicates a bug in upstream assembly, not a transient generation failure.
func (t Type) ConsumesNarrative() bool {
	switch t {
	case TypeSignalExtraction, TypeNarrativeSummary, TypeExclusionCheck:
		return true
	}
	return false
}

// ResponseContract declares the structure the generation call must return.
type ResponseContract string

const (
	ContractNone       ResponseContract = "none"        // plain text
	ContractJSON       ResponseContract = "json"        // free JSON
	ContractJSONSchema ResponseContract = "json-schema" // schema-checked JSON
)

// ContractFor returns the response contract each task type declares.
func ContractFor(t Type) ResponseContract {
	switch t {
	case TypeNarrativeSummary:
		return ContractNone
	case TypeReviewerSynthesis:
		return ContractJSON
	default:
		return ContractJSONSchema
	}
}

// Node is one task in the dependency graph. Nodes are created when a plan
// request is parameterized and immutable afterward.
type Node struct {
	ID        core.TaskID   `json:"id"`
	Type      Type          `json:"type"`
	DependsOn []core.TaskID `json:"depends_on,omitempty"`
}

// Graph is a directed acyclic set of tasks with a declared edge set.
type Graph struct {
	Nodes []Node `json:"nodes"`
}

// Validation captures the structural validation outcome for one task output.
type Validation struct {
	Passed   bool     `json:"passed"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Output is one task's result, keyed by task ID. It is owned by the
// execution run and discarded when the run ends unless persisted by the
// assembler.
type Output struct {
	TaskID     core.TaskID            `json:"task_id"`
	Type       Type                   `json:"type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	Text       string                 `json:"text,omitempty"`
	Validation Validation             `json:"validation"`
	DurationMs int64                  `json:"duration_ms"`
}

// CatalogFor builds the task graph for a resolved archetype. Construction is
// pure: same archetype, same graph.
func CatalogFor(arch archetype.Archetype) Graph {
	switch arch {
	case archetype.ArchetypePreventabilityDetective:
		return Graph{Nodes: []Node{
			{ID: "signal_extraction", Type: TypeSignalExtraction},
			{ID: "criteria_mapping", Type: TypeCriteriaMapping, DependsOn: []core.TaskID{"signal_extraction"}},
			{ID: "exclusion_check", Type: TypeExclusionCheck, DependsOn: []core.TaskID{"signal_extraction"}},
			{ID: "narrative_summary", Type: TypeNarrativeSummary},
			{ID: "reviewer_synthesis", Type: TypeReviewerSynthesis, DependsOn: []core.TaskID{"criteria_mapping", "exclusion_check", "narrative_summary"}},
		}}
	case archetype.ArchetypeMetricAbstractor:
		return Graph{Nodes: []Node{
			{ID: "signal_extraction", Type: TypeSignalExtraction},
			{ID: "criteria_mapping", Type: TypeCriteriaMapping, DependsOn: []core.TaskID{"signal_extraction"}},
			{ID: "question_generation", Type: TypeQuestionGeneration, DependsOn: []core.TaskID{"criteria_mapping"}},
			{ID: "reviewer_synthesis", Type: TypeReviewerSynthesis, DependsOn: []core.TaskID{"question_generation"}},
		}}
	case archetype.ArchetypeExclusionAuditor:
		return Graph{Nodes: []Node{
			{ID: "narrative_summary", Type: TypeNarrativeSummary},
			{ID: "exclusion_check", Type: TypeExclusionCheck, DependsOn: []core.TaskID{"narrative_summary"}},
			{ID: "reviewer_synthesis", Type: TypeReviewerSynthesis, DependsOn: []core.TaskID{"exclusion_check"}},
		}}
	default:
		// General_Surveillance and anything unrecognized get the minimal graph.
		return Graph{Nodes: []Node{
			{ID: "signal_extraction", Type: TypeSignalExtraction},
			{ID: "narrative_summary", Type: TypeNarrativeSummary},
			{ID: "reviewer_synthesis", Type: TypeReviewerSynthesis, DependsOn: []core.TaskID{"signal_extraction", "narrative_summary"}},
		}}
	}
}
