package refinery

import (
	"context"
	"fmt"
	"strings"

	"github.com/montanaflynn/stats"

	"hacplanner/domain/core"
	"hacplanner/domain/refine"
	"hacplanner/internal"
	apperrors "hacplanner/internal/errors"
	"hacplanner/ports"
)

const (
	// MaxIterations caps one refinement run.
	MaxIterations = 10
	// NoImproveLimit is the hard stop: after this many consecutive iterations
	// without a new best, the run ends regardless of remaining budget.
	NoImproveLimit = 3
	// PerfectScore ends the run immediately.
	PerfectScore = 1.0
)

// Candidate is one proposed prompt variant.
type Candidate struct {
	Artifact   string
	ChangeNote string
}

// Mutator proposes the next prompt variant from the current best.
type Mutator interface {
	Propose(ctx context.Context, current string, state *refine.State) (Candidate, error)
}

// Evaluator scores one prompt variant against a single frozen eval case.
// Scores are in [0,1].
type Evaluator interface {
	Score(ctx context.Context, artifact string, c refine.EvalCase) (float64, error)
}

// Loop runs hill-climbing refinement over a prompt artifact: propose, score
// against the frozen batch, keep only improvements, roll back regressions.
type Loop struct {
	mutator   Mutator
	evaluator Evaluator
	prompts   ports.PromptStore
	history   ports.RefinementStore
	log       *internal.Logger
}

// NewLoop wires a refinement loop. prompts and history may be nil for
// in-memory runs.
func NewLoop(mutator Mutator, evaluator Evaluator, prompts ports.PromptStore, history ports.RefinementStore, log *internal.Logger) *Loop {
	return &Loop{mutator: mutator, evaluator: evaluator, prompts: prompts, history: history, log: log}
}

// Run refines the given prompt against the batch until a stop condition
// fires. Stop conditions are checked in priority order: perfect score, then
// the no-improvement limit, then the iteration cap. The returned state always
// carries the best-so-far artifact, never the last attempt.
func (l *Loop) Run(ctx context.Context, id core.PromptID, seed string, batch *refine.EvalBatch) (*refine.State, error) {
	if batch == nil || len(batch.Cases) == 0 {
		return nil, apperrors.InvalidInput("refinement requires a non-empty eval batch")
	}

	state := &refine.State{
		PromptID:     id,
		BestArtifact: seed,
		Outcome:      refine.OutcomeInProgress,
		BatchHash:    batch.Fingerprint(),
	}

	// Baseline score for the seed artifact; iteration 0 is not counted
	// against the budget.
	baseline, err := l.scoreBatch(ctx, seed, batch)
	if err != nil {
		return nil, err
	}
	state.BestScore = baseline
	if l.log != nil {
		l.log.Info("refinement %s: baseline score %.3f over %d cases", id, baseline, len(batch.Cases))
	}
	if baseline >= PerfectScore {
		state.Outcome = refine.OutcomePerfect
		if err := l.persist(ctx, id, state); err != nil {
			return state, err
		}
		return state, nil
	}

	for state.Iteration < MaxIterations {
		state.Iteration++

		candidate, err := l.mutator.Propose(ctx, state.BestArtifact, state)
		if err != nil {
			return nil, apperrors.Wrapf(err, "propose variant at iteration %d", state.Iteration)
		}

		score, err := l.scoreBatch(ctx, candidate.Artifact, batch)
		if err != nil {
			return nil, err
		}

		entry := refine.HistoryEntry{
			Iteration:     state.Iteration,
			Score:         score,
			DeltaFromBest: score - state.BestScore,
			ChangeNote:    candidate.ChangeNote,
			At:            core.Now(),
		}

		switch {
		case score > state.BestScore:
			entry.Accepted = true
			state.BestScore = score
			state.BestArtifact = candidate.Artifact
			state.NoImprove = 0
		case score < state.BestScore:
			// Regression: the candidate is discarded, the best artifact stays.
			entry.RolledBack = true
			state.NoImprove++
		default:
			// A tie is not an improvement.
			state.NoImprove++
		}
		state.Append(entry)

		if l.log != nil {
			l.log.Debug("refinement %s iter %d: score %.3f best %.3f no_improve %d",
				id, state.Iteration, score, state.BestScore, state.NoImprove)
		}

		if state.BestScore >= PerfectScore {
			state.Outcome = refine.OutcomePerfect
			break
		}
		if state.NoImprove >= NoImproveLimit {
			state.Outcome = refine.OutcomeNoImprove
			break
		}
	}
	if state.Outcome == refine.OutcomeInProgress {
		state.Outcome = refine.OutcomeIterCap
	}

	if err := l.persist(ctx, id, state); err != nil {
		return state, err
	}
	return state, nil
}

// scoreBatch evaluates the artifact against every case and aggregates with an
// unweighted mean.
func (l *Loop) scoreBatch(ctx context.Context, artifact string, batch *refine.EvalBatch) (float64, error) {
	scores := make([]float64, 0, len(batch.Cases))
	for _, c := range batch.Cases {
		s, err := l.evaluator.Score(ctx, artifact, c)
		if err != nil {
			return 0, apperrors.Wrapf(err, "score case %s", c.ID)
		}
		scores = append(scores, s)
	}
	mean, err := stats.Mean(scores)
	if err != nil {
		return 0, apperrors.Wrap(err, "aggregate batch scores")
	}
	return mean, nil
}

func (l *Loop) persist(ctx context.Context, id core.PromptID, state *refine.State) error {
	if l.prompts != nil {
		if err := l.prompts.SavePrompt(ctx, id, state.BestArtifact); err != nil {
			return apperrors.Wrap(err, "persist best prompt")
		}
	}
	if l.history != nil {
		if err := l.history.SaveHistory(ctx, id, state); err != nil {
			return apperrors.Wrap(err, "persist refinement history")
		}
	}
	return nil
}

// Summary renders a short human-readable account of a finished run.
func Summary(state *refine.State) string {
	var b strings.Builder
	fmt.Fprintf(&b, "prompt %s: %d iterations, best %.3f (%s)\n", state.PromptID, state.Iteration, state.BestScore, state.Outcome)
	for _, h := range state.History {
		verb := "tied"
		if h.Accepted {
			verb = "accepted"
		} else if h.RolledBack {
			verb = "rolled back"
		}
		fmt.Fprintf(&b, "  iter %d: %.3f (%+.3f) %s\n", h.Iteration, h.Score, h.DeltaFromBest, verb)
	}
	return b.String()
}
