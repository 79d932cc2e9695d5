package ports

import (
	"context"

	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/domain/refine"
)

// PlanStore persists plans and their quality verdicts as JSON documents.
// The core defines no binary format.
type PlanStore interface {
	SavePlan(ctx context.Context, p *plan.Plan) error
	LoadPlan(ctx context.Context, id core.PlanID) (*plan.Plan, error)
	SaveVerdictJSON(ctx context.Context, id core.PlanID, verdict []byte) error
}

// PromptStore persists prompt artifacts for the refinement loop. Only the
// best-so-far variant is ever written back.
type PromptStore interface {
	LoadPrompt(ctx context.Context, id core.PromptID) (string, error)
	SavePrompt(ctx context.Context, id core.PromptID, text string) error
}

// RefinementStore persists refinement run history.
type RefinementStore interface {
	SaveHistory(ctx context.Context, id core.PromptID, state *refine.State) error
}

// EvalBatchSource loads the fixed, versioned evaluation batch. The loop
// treats the batch as frozen input; it is never mutated to make tuning easier.
type EvalBatchSource interface {
	LoadBatch(ctx context.Context, name string) (*refine.EvalBatch, error)
}

// ConcernRoster lists concern identifiers for bulk planning.
type ConcernRoster interface {
	ListConcerns(ctx context.Context) ([]string, error)
}
