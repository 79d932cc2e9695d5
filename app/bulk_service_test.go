package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hacplanner/domain/core"
	"hacplanner/internal/testkit"
	"hacplanner/internal/validation"
)

func TestBulkRunFansOutOverRoster(t *testing.T) {
	kit := testkit.NewTestKit()
	planner := newPlannerService(&testkit.CannedGenerator{}, kit, validation.FailActionWarn)
	svc := NewBulkService(planner, kit.Roster, 2, nil)

	narratives := testkit.NewNarrativeGenerator(11)
	req := BulkRequest{
		Narratives: map[string]string{
			"CLABSI": narratives.Narrative("CLABSI"),
			"CAUTI":  narratives.Narrative("CAUTI"),
			"SSI":    narratives.Narrative("SSI"),
			// C4 has no narrative and must be skipped, not failed.
		},
	}

	result, err := svc.Run(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 3, kit.Plans.Count())

	// Results keep roster order.
	require.Len(t, result.Items, 4)
	assert.Equal(t, "CLABSI", result.Items[0].Concern)
	assert.Equal(t, "C4", result.Items[3].Concern)
	assert.True(t, result.Items[3].Skipped)
}

func TestBulkRunIsolatesFailures(t *testing.T) {
	kit := testkit.NewTestKit()
	kit.Roster.Concerns = []string{"CLABSI", "CAUTI"}

	// A failing generator under a blocking fail action: every concern errors,
	// but the batch itself completes.
	gen := &testkit.CannedGenerator{Err: core.ErrGenerationTransport}
	planner := newPlannerService(gen, kit, validation.FailActionBlock)
	svc := NewBulkService(planner, kit.Roster, 1, nil)

	result, err := svc.Run(context.Background(), BulkRequest{
		Narratives: map[string]string{"CLABSI": "narrative", "CAUTI": "narrative"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Failed)
	assert.Equal(t, 0, result.Succeeded)
	for _, item := range result.Items {
		assert.NotEmpty(t, item.Error)
	}
}

func TestBulkRunEmptyRoster(t *testing.T) {
	kit := testkit.NewTestKit()
	kit.Roster.Concerns = nil
	planner := newPlannerService(&testkit.CannedGenerator{}, kit, validation.FailActionWarn)
	svc := NewBulkService(planner, kit.Roster, 2, nil)

	_, err := svc.Run(context.Background(), BulkRequest{})
	require.Error(t, err)
}
