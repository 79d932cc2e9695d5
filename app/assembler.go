package app

import (
	"encoding/json"

	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/domain/task"
	"hacplanner/internal/pipeline"
)

// assemblePlan folds validated task outputs into the canonical plan document.
// Task outputs have already passed structural checks, so decoding failures
// here are treated as absent sections, not errors.
func assemblePlan(req pipeline.Request, outputs map[core.TaskID]*task.Output) *plan.Plan {
	p := &plan.Plan{
		Metadata: plan.Metadata{
			PlanningID:  core.PlanID(core.NewID()),
			Concern:     req.Concern,
			Domain:      req.Context.Domain,
			Archetype:   req.Context.Archetype,
			Mode:        req.Mode,
			GeneratedAt: core.Now(),
		},
		Category: categoryFor(outputs),
	}

	for _, out := range outputs {
		switch out.Type {
		case task.TypeSignalExtraction:
			decodeSection(out.Payload, "signals", &p.Signals)
			for i := range p.Signals {
				if p.Signals[i].ID == "" {
					p.Signals[i].ID = core.NewID().String()
				}
			}
		case task.TypeQuestionGeneration:
			decodeSection(out.Payload, "questions", &p.Questions)
			for i := range p.Questions {
				if p.Questions[i].ID == "" {
					p.Questions[i].ID = core.NewID().String()
				}
			}
		case task.TypeExclusionCheck:
			decodeSection(out.Payload, "exclusions", &p.Exclusions)
		case task.TypeCriteriaMapping:
			p.Criteria = decodeCriteria(out.Payload)
			decodeSection(out.Payload, "sources", &p.Provenance.Sources)
		case task.TypeNarrativeSummary:
			p.Narrative = out.Text
		case task.TypeReviewerSynthesis:
			if conf, ok := out.Payload["confidence"].(float64); ok {
				p.Metadata.PlanConfidence = conf
			}
			if summary, ok := out.Payload["summary"].(string); ok && p.Narrative == "" {
				p.Narrative = summary
			}
			decodeSection(out.Payload, "reference_tools", &p.Provenance.ReferenceTools)
			decodeSection(out.Payload, "research_refs", &p.Provenance.ResearchRefs)
		}
	}

	return p
}

// categoryFor picks the parsimony category from what the graph produced: a
// question battery when question generation ran, signal surveillance otherwise.
func categoryFor(outputs map[core.TaskID]*task.Output) plan.Category {
	for _, out := range outputs {
		if out.Type == task.TypeQuestionGeneration {
			return plan.CategoryQuestionBattery
		}
	}
	return plan.CategorySignalSurveillance
}

// decodeSection round-trips one payload field through JSON into its typed
// slice.
func decodeSection(payload map[string]interface{}, field string, target interface{}) {
	raw, ok := payload[field]
	if !ok {
		return
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return
	}
	_ = json.Unmarshal(data, target)
}

func decodeCriteria(payload map[string]interface{}) plan.CriteriaEvaluation {
	var c plan.CriteriaEvaluation
	data, err := json.Marshal(payload)
	if err != nil {
		return c
	}
	_ = json.Unmarshal(data, &c)

	if c.TotalCriteria == 0 && len(c.CriteriaMet) > 0 {
		c.TotalCriteria = len(c.CriteriaMet)
	}
	if c.CriteriaMetCount == 0 {
		for _, met := range c.CriteriaMet {
			if met {
				c.CriteriaMetCount++
			}
		}
	}
	return c
}
