package pipeline

import (
	"fmt"

	"hacplanner/domain/core"
	"hacplanner/domain/plan"
)

// TemplatePlan builds the deterministic skeleton plan substituted when
// whole-plan generation fails outside strict mode. The skeleton carries the
// resolved context and enough structure to be reviewed and regenerated; it
// never pretends to be clinically complete.
func TemplatePlan(req Request) *plan.Plan {
	concern := req.Concern.String()
	return &plan.Plan{
		Metadata: plan.Metadata{
			PlanningID:     core.PlanID(core.NewID()),
			Concern:        req.Concern,
			Domain:         req.Context.Domain,
			Archetype:      req.Context.Archetype,
			Mode:           req.Mode,
			GeneratedAt:    core.Now(),
			PlanConfidence: 0,
		},
		Category: plan.CategorySignalSurveillance,
		Signals: []plan.Signal{
			{
				ID:        "template-diagnosis",
				Name:      fmt.Sprintf("Diagnosis code recorded for %s", concern),
				Trigger:   "diagnosis.code",
				Rationale: "Template fallback: review and replace with concern-specific triggers.",
			},
			{
				ID:        "template-result",
				Name:      fmt.Sprintf("Relevant lab result for %s", concern),
				Trigger:   "labs.result",
				Rationale: "Template fallback: review and replace with concern-specific triggers.",
			},
		},
		Narrative: fmt.Sprintf("Template fallback plan for %s. Generation failed; signals below are placeholders pending regeneration.", concern),
		Criteria: plan.CriteriaEvaluation{
			Determination: "INDETERMINATE",
			Confidence:    0,
		},
		Provenance: plan.Provenance{
			Sources: []string{"template_fallback"},
		},
	}
}
