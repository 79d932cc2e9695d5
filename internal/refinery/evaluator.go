package refinery

import (
	"context"
	"strings"
	"time"

	"hacplanner/domain/refine"
	"hacplanner/domain/task"
	"hacplanner/ports"
)

// ExtractionEvaluator scores a prompt variant by running it against a frozen
// case and measuring how many expected signals and phrases appear in the
// structured output. Scores are fractions in [0,1]; a case with no
// expectations scores 1 when generation succeeds at all.
type ExtractionEvaluator struct {
	gen     ports.Generator
	timeout time.Duration
}

// NewExtractionEvaluator creates a generator-backed evaluator.
func NewExtractionEvaluator(gen ports.Generator, timeout time.Duration) *ExtractionEvaluator {
	return &ExtractionEvaluator{gen: gen, timeout: timeout}
}

// Score runs the artifact as a prompt over the case narrative.
func (e *ExtractionEvaluator) Score(ctx context.Context, artifact string, c refine.EvalCase) (float64, error) {
	prompt := strings.ReplaceAll(artifact, "{NARRATIVE}", c.Narrative)

	gen, err := e.gen.Generate(ctx, ports.GenerateRequest{
		Prompt:   prompt,
		Contract: task.ContractJSON,
		Timeout:  e.timeout,
	})
	if err != nil {
		return 0, err
	}

	expected := len(c.ExpectedSignals) + len(c.ExpectedPhrases)
	if expected == 0 {
		return 1, nil
	}

	haystack := strings.ToLower(gen.Text)
	if len(gen.JSON) > 0 {
		haystack += " " + strings.ToLower(flatten(gen.JSON))
	}

	hits := 0
	for _, want := range c.ExpectedSignals {
		if strings.Contains(haystack, strings.ToLower(want)) {
			hits++
		}
	}
	for _, want := range c.ExpectedPhrases {
		if strings.Contains(haystack, strings.ToLower(want)) {
			hits++
		}
	}
	return float64(hits) / float64(expected), nil
}

// flatten renders nested payload values as a searchable string.
func flatten(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case map[string]interface{}:
		var b strings.Builder
		for _, val := range t {
			b.WriteString(flatten(val))
			b.WriteString(" ")
		}
		return b.String()
	case []interface{}:
		var b strings.Builder
		for _, val := range t {
			b.WriteString(flatten(val))
			b.WriteString(" ")
		}
		return b.String()
	default:
		return ""
	}
}

var _ Evaluator = (*ExtractionEvaluator)(nil)
