package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"

	"hacplanner/domain/core"
	"hacplanner/domain/task"
)

// systemContext is the fixed system message shared by every task prompt.
const systemContext = "You are a clinical surveillance planning assistant. " +
	"Respond with valid JSON when a schema is given."

// promptTemplates are the live prompt text per task type. The refinement loop
// rewrites these per concern; these are the shipped defaults.
var promptTemplates = map[task.Type]string{
	task.TypeSignalExtraction: `Extract surveillance signals for concern {CONCERN} ({DOMAIN}, archetype {ARCHETYPE}).
Case narrative:
{NARRATIVE}

Return JSON: {"signals": [{"name": "...", "trigger": "structured field path or coded expression", "rationale": "...", "sourced": true|false}]}`,

	task.TypeCriteriaMapping: `Map the concern criteria for {CONCERN} against the extracted signals.
Prior signal extraction:
{PRIOR:signal_extraction}

Return JSON: {"determination": "...", "confidence": 0.0-1.0, "criteria_met": {"criterion": true|false}}`,

	task.TypeExclusionCheck: `Check every exclusion rule for {CONCERN}.
Case narrative:
{NARRATIVE}

Return JSON: {"exclusions": [{"name": "...", "status": "applies|does_not_apply|indeterminate", "rationale": "..."}]}`,

	task.TypeNarrativeSummary: `Summarize the clinical course relevant to {CONCERN} in plain prose for a reviewer.
Case narrative:
{NARRATIVE}`,

	task.TypeQuestionGeneration: `Generate abstraction questions a reviewer must answer for {CONCERN}.
Criteria mapping:
{PRIOR:criteria_mapping}

Return JSON: {"questions": [{"text": "...", "intent": "..."}]}`,

	task.TypeReviewerSynthesis: `Synthesize the reviewer-facing summary for {CONCERN} from all prior task outputs.
Prior outputs:
{PRIOR_ALL}

Return JSON with your synthesis, including "summary" and "confidence".`,
}

// responseSchemas declare the shape for schema-checked tasks.
var responseSchemas = map[task.Type]map[string]interface{}{
	task.TypeSignalExtraction: {
		"type":     "object",
		"required": []string{"signals"},
		"properties": map[string]interface{}{
			"signals": map[string]interface{}{"type": "array"},
		},
	},
	task.TypeCriteriaMapping: {
		"type":     "object",
		"required": []string{"determination", "criteria_met"},
	},
	task.TypeExclusionCheck: {
		"type":     "object",
		"required": []string{"exclusions"},
	},
	task.TypeQuestionGeneration: {
		"type":     "object",
		"required": []string{"questions"},
	},
}

// buildPrompt renders the task prompt from its template, the request, and
// prior outputs. {PRIOR:<id>} splices a named prior output; {PRIOR_ALL}
// splices everything accumulated so far in execution order.
func buildPrompt(node task.Node, req Request, prior map[core.TaskID]*task.Output, order []core.TaskID) (string, error) {
	tmpl := req.PromptOverrides[node.Type]
	if tmpl == "" {
		tmpl = promptTemplates[node.Type]
	}
	if tmpl == "" {
		return "", fmt.Errorf("%w: %s", core.ErrUnknownTaskType, node.Type)
	}

	out := tmpl
	out = strings.ReplaceAll(out, "{CONCERN}", req.Concern.String())
	out = strings.ReplaceAll(out, "{DOMAIN}", string(req.Context.Domain))
	out = strings.ReplaceAll(out, "{ARCHETYPE}", string(req.Context.Archetype))
	out = strings.ReplaceAll(out, "{NARRATIVE}", req.Narrative)

	for strings.Contains(out, "{PRIOR:") {
		start := strings.Index(out, "{PRIOR:")
		end := strings.Index(out[start:], "}")
		if end < 0 {
			break
		}
		ref := out[start+len("{PRIOR:") : start+end]
		out = out[:start] + renderPrior(prior[core.TaskID(ref)]) + out[start+end+1:]
	}

	if strings.Contains(out, "{PRIOR_ALL}") {
		var b strings.Builder
		for _, id := range order {
			o, ok := prior[id]
			if !ok {
				continue
			}
			b.WriteString(fmt.Sprintf("--- %s ---\n%s\n", id, renderPrior(o)))
		}
		out = strings.ReplaceAll(out, "{PRIOR_ALL}", b.String())
	}

	return out, nil
}

func renderPrior(o *task.Output) string {
	if o == nil {
		return "(not available)"
	}
	if len(o.Payload) > 0 {
		data, err := json.Marshal(o.Payload)
		if err == nil {
			return string(data)
		}
	}
	return o.Text
}
