package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/internal/errors"
	"hacplanner/internal/pipeline"
	"hacplanner/internal/testkit"
	"hacplanner/internal/validation"
)

func newPlannerService(gen *testkit.CannedGenerator, kit *testkit.TestKit, failAction validation.FailAction) *PlannerService {
	return NewPlannerService(
		archetype.NewDefaultResolver(nil),
		pipeline.NewExecutor(gen, nil),
		validation.NewCoupler(validation.DefaultQualityThreshold),
		kit.Plans,
		failAction,
		nil,
	)
}

func clabsiRequest() PlanRequest {
	return PlanRequest{
		Concern:   "clabsi",
		Narrative: "Central line placed day 2, fever day 5, blood culture positive day 6.",
		Mode:      plan.ModeFast,
	}
}

func TestGeneratePlanAssemblesAndPersists(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := newPlannerService(&testkit.CannedGenerator{}, kit, validation.FailActionWarn)

	result, err := svc.GeneratePlan(context.Background(), clabsiRequest())
	require.NoError(t, err)
	require.NotNil(t, result.Plan)

	p := result.Plan
	assert.Equal(t, core.ConcernID("CLABSI"), p.Metadata.Concern, "concern token normalized")
	assert.Equal(t, archetype.ArchetypePreventabilityDetective, p.Metadata.Archetype)
	assert.Equal(t, plan.CategorySignalSurveillance, p.Category)
	assert.NotEmpty(t, p.Signals)
	assert.NotEmpty(t, p.Narrative)
	assert.Equal(t, "POSSIBLE", p.Criteria.Determination)
	assert.Equal(t, 2, p.Criteria.CriteriaMetCount, "met count derived from criteria_met map")
	assert.Contains(t, p.Provenance.Sources, "NHSN LCBI criteria")
	assert.False(t, result.FromTemplate)

	assert.NotZero(t, result.Verdict.OverallScore)
	assert.Equal(t, 1, kit.Plans.Count())
	assert.NotEmpty(t, kit.Plans.VerdictJSON(p.Metadata.PlanningID))
}

func TestGeneratePlanQuestionBatteryCategory(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := newPlannerService(&testkit.CannedGenerator{}, kit, validation.FailActionWarn)

	// C4 resolves to Metric_Abstractor whose graph runs question generation.
	req := clabsiRequest()
	req.Concern = "C4"

	result, err := svc.GeneratePlan(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, archetype.ArchetypeMetricAbstractor, result.Plan.Metadata.Archetype)
	assert.Equal(t, plan.CategoryQuestionBattery, result.Plan.Category)
	assert.NotEmpty(t, result.Plan.Questions)
}

func TestGeneratePlanFallsBackToTemplate(t *testing.T) {
	kit := testkit.NewTestKit()
	gen := &testkit.CannedGenerator{Err: core.ErrGenerationTimeout}
	svc := newPlannerService(gen, kit, validation.FailActionWarn)

	result, err := svc.GeneratePlan(context.Background(), clabsiRequest())
	require.NoError(t, err)
	assert.True(t, result.FromTemplate)
	assert.Contains(t, result.Plan.Provenance.Sources, "template_fallback")
	assert.Equal(t, 1, kit.Plans.Count(), "template plan is still persisted for review")
}

func TestGeneratePlanStrictPropagatesFailure(t *testing.T) {
	kit := testkit.NewTestKit()
	gen := &testkit.CannedGenerator{Err: core.ErrGenerationTimeout}
	svc := newPlannerService(gen, kit, validation.FailActionWarn)

	req := clabsiRequest()
	req.Strict = true

	_, err := svc.GeneratePlan(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrGenerationTimeout)
	assert.ErrorIs(t, err, core.ErrStrictNoAutoFill)
	assert.Contains(t, err.Error(), "no auto-fill")
	assert.Zero(t, kit.Plans.Count())
}

func TestGeneratePlanEmptyNarrativeNeverTemplated(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := newPlannerService(&testkit.CannedGenerator{}, kit, validation.FailActionWarn)

	req := clabsiRequest()
	req.Narrative = ""

	_, err := svc.GeneratePlan(context.Background(), req)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrEmptyNarrative)
}

func TestGeneratePlanBlockFailAction(t *testing.T) {
	kit := testkit.NewTestKit()
	// A timed-out generation yields the template plan, which cannot clear the
	// quality threshold.
	gen := &testkit.CannedGenerator{Err: core.ErrGenerationTransport}
	svc := newPlannerService(gen, kit, validation.FailActionBlock)

	result, err := svc.GeneratePlan(context.Background(), clabsiRequest())
	require.Error(t, err)
	assert.Equal(t, errors.CodeQualityGate, errors.GetCode(err))
	require.NotNil(t, result, "result still returned for inspection")
	assert.False(t, result.Validation.IsValid)
	assert.Zero(t, kit.Plans.Count(), "blocked plans are not persisted")
}

func TestGeneratePlanRejectsEmptyConcern(t *testing.T) {
	kit := testkit.NewTestKit()
	svc := newPlannerService(&testkit.CannedGenerator{}, kit, validation.FailActionWarn)

	req := clabsiRequest()
	req.Concern = "  "

	_, err := svc.GeneratePlan(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
