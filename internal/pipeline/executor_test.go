package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/domain/task"
	"hacplanner/ports"
)

// scriptedGenerator returns canned responses keyed by task type, inferred
// from the declared contract and prompt content.
type scriptedGenerator struct {
	calls     []ports.GenerateRequest
	responses map[task.ResponseContract]func(req ports.GenerateRequest) (*ports.Generation, error)
	perCall   []func(req ports.GenerateRequest) (*ports.Generation, error)
}

func (s *scriptedGenerator) Generate(_ context.Context, req ports.GenerateRequest) (*ports.Generation, error) {
	s.calls = append(s.calls, req)
	if len(s.perCall) > 0 {
		fn := s.perCall[0]
		s.perCall = s.perCall[1:]
		return fn(req)
	}
	if fn, ok := s.responses[req.Contract]; ok {
		return fn(req)
	}
	return &ports.Generation{Text: "ok", JSON: map[string]interface{}{"summary": "ok"}}, nil
}

func healthyGenerator() *scriptedGenerator {
	return &scriptedGenerator{
		responses: map[task.ResponseContract]func(req ports.GenerateRequest) (*ports.Generation, error){
			task.ContractNone: func(ports.GenerateRequest) (*ports.Generation, error) {
				return &ports.Generation{Text: "The central line was placed on hospital day 2."}, nil
			},
			task.ContractJSON: func(ports.GenerateRequest) (*ports.Generation, error) {
				return &ports.Generation{
					Text: `{"summary": "reviewable", "confidence": 0.8}`,
					JSON: map[string]interface{}{"summary": "reviewable", "confidence": 0.8},
				}, nil
			},
			task.ContractJSONSchema: func(req ports.GenerateRequest) (*ports.Generation, error) {
				payload := map[string]interface{}{
					"signals": []interface{}{
						map[string]interface{}{"name": "Positive culture", "trigger": "labs.blood_culture.result"},
					},
					"questions": []interface{}{
						map[string]interface{}{"text": "Was the line in place 2 days?"},
					},
					"exclusions":    []interface{}{},
					"determination": "POSSIBLE",
					"criteria_met":  map[string]interface{}{"c1": true},
				}
				return &ports.Generation{Text: "{}", JSON: payload}, nil
			},
		},
	}
}

func testRequest() Request {
	return Request{
		RunID:     core.RunID(core.NewID()),
		Concern:   "CLABSI",
		Context:   archetype.ResolvedContext{Domain: archetype.DomainInfectionPrevention, Archetype: archetype.ArchetypePreventabilityDetective},
		Narrative: "Central line placed day 2, fever day 5, blood culture positive day 6.",
		Mode:      plan.ModeFast,
		Timeout:   30 * time.Second,
	}
}

func TestExecuteProducesOutputPerTask(t *testing.T) {
	gen := healthyGenerator()
	exec := NewExecutor(gen, nil)
	g := task.CatalogFor(archetype.ArchetypePreventabilityDetective)

	outputs, err := exec.Execute(context.Background(), g, testRequest())
	require.NoError(t, err)
	require.Len(t, outputs, len(g.Nodes))

	for _, n := range g.Nodes {
		out, ok := outputs[n.ID]
		require.True(t, ok, "missing output for %s", n.ID)
		assert.True(t, out.Validation.Passed)
		assert.Equal(t, n.Type, out.Type)
	}
}

// TestExecuteDownstreamReadsPriorOutputs verifies the one place task order
// matters semantically: a synthesis task sees extraction results in its prompt.
func TestExecuteDownstreamReadsPriorOutputs(t *testing.T) {
	gen := healthyGenerator()
	exec := NewExecutor(gen, nil)
	g := task.CatalogFor(archetype.ArchetypePreventabilityDetective)

	_, err := exec.Execute(context.Background(), g, testRequest())
	require.NoError(t, err)

	last := gen.calls[len(gen.calls)-1]
	assert.Equal(t, task.ContractJSON, last.Contract, "synthesis runs last")
	assert.Contains(t, last.Prompt, "Positive culture", "synthesis prompt splices prior extraction output")
}

func TestExecuteFailsFastOnEmptyNarrative(t *testing.T) {
	gen := healthyGenerator()
	exec := NewExecutor(gen, nil)
	g := task.CatalogFor(archetype.ArchetypePreventabilityDetective)

	req := testRequest()
	req.Narrative = "   "

	_, err := exec.Execute(context.Background(), g, req)
	require.Error(t, err)

	var te *core.TaskExecutionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "case_narrative_non_empty", te.Check)
	assert.ErrorIs(t, err, core.ErrEmptyNarrative)
	assert.Empty(t, gen.calls, "no generation call before the precondition check")
}

func TestExecuteSurfacesFirstFailedCheck(t *testing.T) {
	gen := &scriptedGenerator{
		perCall: []func(req ports.GenerateRequest) (*ports.Generation, error){
			func(ports.GenerateRequest) (*ports.Generation, error) {
				// signal_extraction with an empty array: fails "signals_non_empty".
				return &ports.Generation{Text: "{}", JSON: map[string]interface{}{"signals": []interface{}{}}}, nil
			},
		},
	}
	exec := NewExecutor(gen, nil)
	g := task.CatalogFor(archetype.ArchetypePreventabilityDetective)

	_, err := exec.Execute(context.Background(), g, testRequest())
	require.Error(t, err)

	var te *core.TaskExecutionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, core.TaskID("signal_extraction"), te.TaskID)
	assert.Equal(t, "signals_non_empty", te.Check)
}

func TestExecuteWrapsGenerationFailure(t *testing.T) {
	genErr := core.ErrGenerationTimeout
	gen := &scriptedGenerator{
		perCall: []func(req ports.GenerateRequest) (*ports.Generation, error){
			func(ports.GenerateRequest) (*ports.Generation, error) {
				return nil, genErr
			},
		},
	}
	exec := NewExecutor(gen, nil)
	g := task.CatalogFor(archetype.ArchetypePreventabilityDetective)

	_, err := exec.Execute(context.Background(), g, testRequest())
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrGenerationTimeout))

	var te *core.TaskExecutionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "generation_succeeded", te.Check)
}

func TestExecuteUsesPromptOverrides(t *testing.T) {
	gen := healthyGenerator()
	exec := NewExecutor(gen, nil)
	g := task.Graph{Nodes: []task.Node{{ID: "signal_extraction", Type: task.TypeSignalExtraction}}}

	req := testRequest()
	req.PromptOverrides = map[task.Type]string{
		task.TypeSignalExtraction: "REFINED VARIANT for {CONCERN}: {NARRATIVE}",
	}

	_, err := exec.Execute(context.Background(), g, req)
	require.NoError(t, err)
	require.Len(t, gen.calls, 1)
	assert.Contains(t, gen.calls[0].Prompt, "REFINED VARIANT for CLABSI")
}

func TestTemplatePlanIsReviewableSkeleton(t *testing.T) {
	p := TemplatePlan(testRequest())
	assert.Equal(t, core.ConcernID("CLABSI"), p.Metadata.Concern)
	assert.NotEmpty(t, p.Signals)
	assert.Equal(t, "INDETERMINATE", p.Criteria.Determination)
	assert.Contains(t, p.Provenance.Sources, "template_fallback")
	assert.Zero(t, p.Metadata.PlanConfidence)
}
