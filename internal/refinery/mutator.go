package refinery

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hacplanner/domain/refine"
	"hacplanner/domain/task"
	"hacplanner/ports"
)

// PromptMutator proposes prompt variants via the generator itself: the model
// is shown the current prompt and the recent score history and asked for a
// single revised prompt.
type PromptMutator struct {
	gen     ports.Generator
	timeout time.Duration
}

// NewPromptMutator creates an LLM-backed mutator.
func NewPromptMutator(gen ports.Generator, timeout time.Duration) *PromptMutator {
	return &PromptMutator{gen: gen, timeout: timeout}
}

const mutatorSystem = "You revise extraction prompts for a clinical surveillance pipeline. Return only the revised prompt text, no commentary."

// Propose asks for one revised variant of the current best prompt.
func (m *PromptMutator) Propose(ctx context.Context, current string, state *refine.State) (Candidate, error) {
	var history strings.Builder
	tail := state.History
	if len(tail) > 3 {
		tail = tail[len(tail)-3:]
	}
	for _, h := range tail {
		fmt.Fprintf(&history, "- iteration %d scored %.3f (accepted=%t)\n", h.Iteration, h.Score, h.Accepted)
	}

	prompt := fmt.Sprintf(
		"Revise this prompt so it extracts the expected clinical signals more reliably. Keep every placeholder (text in curly braces) intact.\n\nCurrent prompt:\n%s\n\nRecent results:\n%s",
		current, history.String())

	gen, err := m.gen.Generate(ctx, ports.GenerateRequest{
		Prompt:   prompt,
		System:   mutatorSystem,
		Contract: task.ContractNone,
		Timeout:  m.timeout,
	})
	if err != nil {
		return Candidate{}, err
	}

	artifact := strings.TrimSpace(gen.Text)
	if artifact == "" {
		artifact = current
	}
	return Candidate{
		Artifact:   artifact,
		ChangeNote: fmt.Sprintf("model revision at iteration %d", state.Iteration),
	}, nil
}

var _ Mutator = (*PromptMutator)(nil)
