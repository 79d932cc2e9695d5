package pipeline

import (
	"strings"

	"hacplanner/domain/task"
	"hacplanner/ports"
)

// structuralChecks runs task-type-specific validation against a generation
// result and returns the names of failed checks in evaluation order. The
// executor surfaces the first failure as a TaskExecutionError.
func structuralChecks(t task.Type, gen *ports.Generation) []string {
	switch t {
	case task.TypeSignalExtraction:
		return checkArrayField(gen, "signals", true, []string{"name", "trigger"})
	case task.TypeQuestionGeneration:
		return checkArrayField(gen, "questions", true, []string{"text"})
	case task.TypeExclusionCheck:
		return checkArrayField(gen, "exclusions", false, []string{"name", "status"})
	case task.TypeCriteriaMapping:
		return checkCriteriaMapping(gen)
	case task.TypeReviewerSynthesis:
		if len(gen.JSON) == 0 {
			return []string{"synthesis_object_non_empty"}
		}
		return nil
	case task.TypeNarrativeSummary:
		if strings.TrimSpace(gen.Text) == "" {
			return []string{"summary_text_non_empty"}
		}
		return nil
	default:
		return []string{"known_task_type"}
	}
}

// checkArrayField verifies that the payload has the named field, that it is
// an array, optionally that it is non-empty, and that every element carries
// the required keys.
func checkArrayField(gen *ports.Generation, field string, requireNonEmpty bool, requiredKeys []string) []string {
	var failed []string

	raw, ok := gen.JSON[field]
	if !ok {
		return []string{"has_" + field + "_field"}
	}
	items, ok := raw.([]interface{})
	if !ok {
		return []string{field + "_is_array"}
	}
	if requireNonEmpty && len(items) == 0 {
		return []string{field + "_non_empty"}
	}

	for _, item := range items {
		obj, ok := item.(map[string]interface{})
		if !ok {
			failed = append(failed, field+"_elements_are_objects")
			break
		}
		for _, key := range requiredKeys {
			s, _ := obj[key].(string)
			if strings.TrimSpace(s) == "" {
				failed = append(failed, field+"_elements_have_"+key)
			}
		}
		if len(failed) > 0 {
			break
		}
	}
	return failed
}

func checkCriteriaMapping(gen *ports.Generation) []string {
	det, _ := gen.JSON["determination"].(string)
	if strings.TrimSpace(det) == "" {
		return []string{"has_determination"}
	}
	if _, ok := gen.JSON["criteria_met"]; !ok {
		return []string{"has_criteria_met"}
	}
	return nil
}
