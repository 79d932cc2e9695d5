package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/internal/testkit"
	"hacplanner/ports"
)

// echoGenerator records the prompt and returns a fixed answer.
type echoGenerator struct {
	lastPrompt string
	lastSystem string
}

func (e *echoGenerator) Generate(_ context.Context, req ports.GenerateRequest) (*ports.Generation, error) {
	e.lastPrompt = req.Prompt
	e.lastSystem = req.System
	return &ports.Generation{Text: "The plan watches for positive cultures."}, nil
}

func storedPlan(t *testing.T, kit *testkit.TestKit) *plan.Plan {
	t.Helper()
	p := &plan.Plan{
		Metadata: plan.Metadata{
			PlanningID: core.PlanID(core.NewID()),
			Concern:    "CLABSI",
			Domain:     archetype.DomainInfectionPrevention,
			Archetype:  archetype.ArchetypePreventabilityDetective,
			Mode:       plan.ModeFast,
		},
		Category:  plan.CategorySignalSurveillance,
		Signals:   []plan.Signal{{ID: "s1", Name: "Positive culture", Trigger: "labs.culture.result"}},
		Narrative: "Line placed day 2.",
		Criteria:  plan.CriteriaEvaluation{Determination: "POSSIBLE"},
	}
	require.NoError(t, kit.Plans.SavePlan(context.Background(), p))
	return p
}

func TestInterrogateExplainSplicesQuestionAndPlan(t *testing.T) {
	kit := testkit.NewTestKit()
	gen := &echoGenerator{}
	svc := NewInterrogationService(kit.Plans, gen, nil)
	p := storedPlan(t, kit)

	result, err := svc.Interrogate(context.Background(), InterrogationRequest{
		PlanID:   p.Metadata.PlanningID,
		Mode:     ModeExplain,
		Question: "Why is the culture signal included?",
	})
	require.NoError(t, err)
	assert.Equal(t, "The plan watches for positive cultures.", result.Answer)
	assert.Contains(t, gen.lastPrompt, "Why is the culture signal included?")
	assert.Contains(t, gen.lastPrompt, "Positive culture", "plan document spliced into prompt")
	assert.Contains(t, gen.lastSystem, "surveillance reviewer")
}

func TestInterrogateSummarizeNeedsNoQuestion(t *testing.T) {
	kit := testkit.NewTestKit()
	gen := &echoGenerator{}
	svc := NewInterrogationService(kit.Plans, gen, nil)
	p := storedPlan(t, kit)

	_, err := svc.Interrogate(context.Background(), InterrogationRequest{
		PlanID: p.Metadata.PlanningID,
		Mode:   ModeSummarize,
	})
	require.NoError(t, err)
	assert.Contains(t, gen.lastPrompt, "Summarize")
}

func TestInterrogateExplainRequiresQuestion(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := NewInterrogationService(kit.Plans, &echoGenerator{}, nil)
	p := storedPlan(t, kit)

	_, err := svc.Interrogate(context.Background(), InterrogationRequest{
		PlanID: p.Metadata.PlanningID,
		Mode:   ModeExplain,
	})
	assert.Error(t, err)
}

func TestInterrogateUnknownMode(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := NewInterrogationService(kit.Plans, &echoGenerator{}, nil)
	p := storedPlan(t, kit)

	_, err := svc.Interrogate(context.Background(), InterrogationRequest{
		PlanID: p.Metadata.PlanningID,
		Mode:   "debate",
	})
	assert.Error(t, err)
}

func TestInterrogateMissingPlan(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := NewInterrogationService(kit.Plans, &echoGenerator{}, nil)

	_, err := svc.Interrogate(context.Background(), InterrogationRequest{
		PlanID: core.PlanID(core.NewID()),
		Mode:   ModeSummarize,
	})
	assert.ErrorIs(t, err, core.ErrPlanNotFound)
}
