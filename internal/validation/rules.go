package validation

import (
	"fmt"
	"strings"

	"hacplanner/domain/plan"
)

// businessRules applies the cross-field checks that struct tags cannot
// express. Rules are evaluated in a fixed order so error lists are stable.
func businessRules(p *plan.Plan) (errors, warnings []Issue) {
	switch p.Category {
	case plan.CategorySignalSurveillance:
		if len(p.Signals) == 0 {
			errors = append(errors, Issue{
				Code:    "business",
				Field:   "signals",
				Message: "signal surveillance plans require at least one signal",
			})
		}
	case plan.CategoryQuestionBattery:
		if len(p.Questions) == 0 {
			errors = append(errors, Issue{
				Code:    "business",
				Field:   "questions",
				Message: "question battery plans require at least one question",
			})
		}
	}

	seen := map[string]bool{}
	for _, s := range p.Signals {
		if seen[s.ID] {
			errors = append(errors, Issue{
				Code:    "business",
				Field:   "signals",
				Message: fmt.Sprintf("duplicate signal id %q", s.ID),
			})
		}
		seen[s.ID] = true
	}

	if p.Criteria.CriteriaMetCount > p.Criteria.TotalCriteria {
		errors = append(errors, Issue{
			Code:  "business",
			Field: "criteria_evaluation",
			Message: fmt.Sprintf("criteria_met_count %d exceeds total_criteria %d",
				p.Criteria.CriteriaMetCount, p.Criteria.TotalCriteria),
		})
	}

	if len(strings.TrimSpace(p.Narrative)) < 40 {
		warnings = append(warnings, Issue{
			Code:    "business",
			Field:   "narrative",
			Message: "narrative is very short; reviewers rely on it for context",
		})
	}

	if len(p.Signals) > 0 && sourcedCount(p.Signals) == 0 {
		warnings = append(warnings, Issue{
			Code:    "business",
			Field:   "signals",
			Message: "no signal cites a criteria source",
		})
	}

	return errors, warnings
}

func sourcedCount(signals []plan.Signal) int {
	n := 0
	for _, s := range signals {
		if s.Sourced {
			n++
		}
	}
	return n
}
