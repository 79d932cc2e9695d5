package pipeline

import (
	"context"
	"strings"
	"time"

	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/domain/task"
	"hacplanner/internal"
	"hacplanner/ports"
)

// Request parameterizes one plan execution run. Each run owns its own output
// map; there is no shared mutable state across concurrent requests.
type Request struct {
	RunID     core.RunID
	Concern   core.ConcernID
	Context   archetype.ResolvedContext
	Narrative string
	Mode      plan.GenerationMode
	// Strict disables every fallback: a generation failure propagates instead
	// of being auto-filled.
	Strict bool
	// Timeout bounds each external generation call.
	Timeout time.Duration
	// PromptOverrides substitutes refined prompt variants per task type.
	PromptOverrides map[task.Type]string
}

// Executor walks the task graph in dependency order, one generation call at a
// time. Independent tasks are intentionally not parallelized: downstream
// tasks read the in-memory output map, so ordering is a correctness property
// here, not a scheduling optimization.
type Executor struct {
	gen ports.Generator
	log *internal.Logger
}

// NewExecutor creates an executor over the external generator.
func NewExecutor(gen ports.Generator, log *internal.Logger) *Executor {
	return &Executor{gen: gen, log: log}
}

// Execute runs every task in the graph in topological order. On the first
// validation failure it returns a TaskExecutionError identifying the task and
// the failing check; there are no retries within a run.
func (e *Executor) Execute(ctx context.Context, g task.Graph, req Request) (map[core.TaskID]*task.Output, error) {
	order := ExecutionOrder(g)
	nodes := make(map[core.TaskID]task.Node, len(g.Nodes))
	for _, n := range g.Nodes {
		nodes[n.ID] = n
	}

	outputs := make(map[core.TaskID]*task.Output, len(order))
	var done []core.TaskID

	for _, id := range order {
		node := nodes[id]

		// Deterministic precondition, not a retryable generation failure: an
		// empty narrative here means upstream assembly is broken.
		if node.Type.ConsumesNarrative() && strings.TrimSpace(req.Narrative) == "" {
			return nil, &core.TaskExecutionError{
				TaskID: node.ID,
				Check:  "case_narrative_non_empty",
				Cause:  core.ErrEmptyNarrative,
			}
		}

		out, err := e.runTask(ctx, node, req, outputs, done)
		if err != nil {
			return nil, err
		}

		outputs[id] = out
		done = append(done, id)
	}

	return outputs, nil
}

func (e *Executor) runTask(ctx context.Context, node task.Node, req Request, prior map[core.TaskID]*task.Output, order []core.TaskID) (*task.Output, error) {
	prompt, err := buildPrompt(node, req, prior, order)
	if err != nil {
		return nil, &core.TaskExecutionError{TaskID: node.ID, Check: "prompt_template_known", Cause: err}
	}

	contract := task.ContractFor(node.Type)
	start := time.Now()

	gen, err := e.gen.Generate(ctx, ports.GenerateRequest{
		Prompt:   prompt,
		System:   systemContext,
		Contract: contract,
		Schema:   responseSchemas[node.Type],
		Timeout:  req.Timeout,
	})
	if err != nil {
		return nil, &core.TaskExecutionError{TaskID: node.ID, Check: "generation_succeeded", Cause: err}
	}

	if failed := structuralChecks(node.Type, gen); len(failed) > 0 {
		if e.log != nil {
			e.log.Debug("task %s failed structural checks: %v", node.ID, failed)
		}
		return nil, core.NewTaskExecutionError(node.ID, failed[0])
	}

	if e.log != nil {
		e.log.Debug("task %s completed in %s", node.ID, time.Since(start))
	}

	return &task.Output{
		TaskID:     node.ID,
		Type:       node.Type,
		Payload:    gen.JSON,
		Text:       gen.Text,
		Validation: task.Validation{Passed: true},
		DurationMs: time.Since(start).Milliseconds(),
	}, nil
}
