package refinery

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hacplanner/domain/core"
	"hacplanner/domain/refine"
)

// sequenceEvaluator returns canned batch scores in order; the first call
// scores the seed artifact.
type sequenceEvaluator struct {
	scores []float64
	calls  int
}

func (s *sequenceEvaluator) Score(_ context.Context, _ string, _ refine.EvalCase) (float64, error) {
	if s.calls >= len(s.scores) {
		return s.scores[len(s.scores)-1], nil
	}
	v := s.scores[s.calls]
	s.calls++
	return v, nil
}

type countingMutator struct {
	proposals int
}

func (m *countingMutator) Propose(_ context.Context, current string, state *refine.State) (Candidate, error) {
	m.proposals++
	return Candidate{
		Artifact:   fmt.Sprintf("variant-%d", state.Iteration),
		ChangeNote: fmt.Sprintf("tightened instructions (round %d)", state.Iteration),
	}, nil
}

type recordingPromptStore struct {
	saved map[core.PromptID]string
}

func (r *recordingPromptStore) LoadPrompt(_ context.Context, id core.PromptID) (string, error) {
	return r.saved[id], nil
}

func (r *recordingPromptStore) SavePrompt(_ context.Context, id core.PromptID, text string) error {
	if r.saved == nil {
		r.saved = map[core.PromptID]string{}
	}
	r.saved[id] = text
	return nil
}

func singleCaseBatch() *refine.EvalBatch {
	return &refine.EvalBatch{
		Name:    "clabsi-frozen",
		Version: "1",
		Cases: []refine.EvalCase{
			{ID: core.EvalCaseID(core.NewID()), Narrative: "Line day 2, culture positive day 6."},
		},
	}
}

// The canonical hill-climb property: best-so-far survives regressions, a
// regression rolls back, and three consecutive non-improvements hard-stop the
// run with budget remaining.
func TestRunKeepsBestAndStopsOnNoImprovement(t *testing.T) {
	eval := &sequenceEvaluator{scores: []float64{0.0, 0.5, 0.7, 0.6, 0.6, 0.6}}
	loop := NewLoop(&countingMutator{}, eval, nil, nil, nil)

	state, err := loop.Run(context.Background(), core.PromptID(core.NewID()), "seed", singleCaseBatch())
	require.NoError(t, err)

	assert.Equal(t, refine.OutcomeNoImprove, state.Outcome)
	assert.Equal(t, 5, state.Iteration, "hard stop fires before the iteration cap")
	assert.InDelta(t, 0.7, state.BestScore, 1e-9)
	assert.Equal(t, "variant-2", state.BestArtifact, "best artifact is the iteration-2 variant, not the last attempt")

	require.Len(t, state.History, 5)
	assert.True(t, state.History[0].Accepted)
	assert.True(t, state.History[1].Accepted)
	assert.True(t, state.History[2].RolledBack, "regression at iteration 3 rolls back")
	assert.False(t, state.History[3].Accepted)
	assert.False(t, state.History[4].Accepted)
	assert.InDelta(t, -0.1, state.History[2].DeltaFromBest, 1e-9)
}

func TestRunStopsImmediatelyOnPerfectScore(t *testing.T) {
	eval := &sequenceEvaluator{scores: []float64{0.2, 1.0}}
	loop := NewLoop(&countingMutator{}, eval, nil, nil, nil)

	state, err := loop.Run(context.Background(), core.PromptID(core.NewID()), "seed", singleCaseBatch())
	require.NoError(t, err)

	assert.Equal(t, refine.OutcomePerfect, state.Outcome)
	assert.Equal(t, 1, state.Iteration)
	assert.InDelta(t, 1.0, state.BestScore, 1e-9)
}

func TestRunHitsIterationCap(t *testing.T) {
	// Monotonically improving: no stop condition fires until the cap.
	scores := []float64{0.1}
	for i := 1; i <= MaxIterations; i++ {
		scores = append(scores, 0.1+float64(i)*0.05)
	}
	eval := &sequenceEvaluator{scores: scores}
	mut := &countingMutator{}
	loop := NewLoop(mut, eval, nil, nil, nil)

	state, err := loop.Run(context.Background(), core.PromptID(core.NewID()), "seed", singleCaseBatch())
	require.NoError(t, err)

	assert.Equal(t, refine.OutcomeIterCap, state.Outcome)
	assert.Equal(t, MaxIterations, state.Iteration)
	assert.Equal(t, MaxIterations, mut.proposals)
}

// A tie with the best score is not an improvement.
func TestTiesCountTowardHardStop(t *testing.T) {
	eval := &sequenceEvaluator{scores: []float64{0.5, 0.5, 0.5, 0.5}}
	loop := NewLoop(&countingMutator{}, eval, nil, nil, nil)

	state, err := loop.Run(context.Background(), core.PromptID(core.NewID()), "seed", singleCaseBatch())
	require.NoError(t, err)

	assert.Equal(t, refine.OutcomeNoImprove, state.Outcome)
	assert.Equal(t, 3, state.Iteration)
	assert.Equal(t, "seed", state.BestArtifact)
	for _, h := range state.History {
		assert.False(t, h.Accepted)
		assert.False(t, h.RolledBack)
	}
}

func TestRunRejectsEmptyBatch(t *testing.T) {
	loop := NewLoop(&countingMutator{}, &sequenceEvaluator{scores: []float64{0.5}}, nil, nil, nil)

	_, err := loop.Run(context.Background(), core.PromptID(core.NewID()), "seed", &refine.EvalBatch{})
	require.Error(t, err)
}

func TestRunPersistsBestPromptOnly(t *testing.T) {
	store := &recordingPromptStore{}
	eval := &sequenceEvaluator{scores: []float64{0.0, 0.5, 0.7, 0.6, 0.6, 0.6}}
	loop := NewLoop(&countingMutator{}, eval, store, nil, nil)

	id := core.PromptID(core.NewID())
	state, err := loop.Run(context.Background(), id, "seed", singleCaseBatch())
	require.NoError(t, err)

	assert.Equal(t, state.BestArtifact, store.saved[id])
}

func TestRunFingerprintsBatch(t *testing.T) {
	batch := singleCaseBatch()
	eval := &sequenceEvaluator{scores: []float64{1.0}}
	loop := NewLoop(&countingMutator{}, eval, nil, nil, nil)

	state, err := loop.Run(context.Background(), core.PromptID(core.NewID()), "seed", batch)
	require.NoError(t, err)
	assert.Equal(t, batch.Fingerprint(), state.BatchHash)
}
