package app

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"hacplanner/domain/archetype"
	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/domain/task"
	"hacplanner/internal"
	"hacplanner/internal/errors"
	"hacplanner/internal/pipeline"
	"hacplanner/internal/quality"
	"hacplanner/internal/validation"
	"hacplanner/ports"
)

// PlannerService orchestrates one plan generation run: context resolution,
// task graph execution, plan assembly, quality assessment, and validation.
type PlannerService struct {
	resolver   *archetype.Resolver
	executor   *pipeline.Executor
	coupler    *validation.Coupler
	store      ports.PlanStore
	failAction validation.FailAction
	log        *internal.Logger
}

// PlanRequest parameterizes one generation run.
type PlanRequest struct {
	Concern    string
	Narrative  string
	DomainHint archetype.Domain
	Mode       plan.GenerationMode
	// Strict disables the template fallback: generation failures propagate.
	Strict  bool
	Timeout time.Duration
	// PromptOverrides substitutes refined prompt variants per task type.
	PromptOverrides map[string]string
}

// PlanResult is the full outcome of a generation run.
type PlanResult struct {
	Plan         *plan.Plan        `json:"plan"`
	Verdict      quality.Verdict   `json:"verdict"`
	Validation   validation.Result `json:"validation"`
	FromTemplate bool              `json:"from_template"`
	RuntimeMs    int64             `json:"runtime_ms"`
}

// NewPlannerService creates a planner service. store may be nil for dry runs.
func NewPlannerService(resolver *archetype.Resolver, executor *pipeline.Executor, coupler *validation.Coupler, store ports.PlanStore, failAction validation.FailAction, log *internal.Logger) *PlannerService {
	if failAction == "" {
		failAction = validation.FailActionWarn
	}
	return &PlannerService{
		resolver:   resolver,
		executor:   executor,
		coupler:    coupler,
		store:      store,
		failAction: failAction,
		log:        log,
	}
}

// GeneratePlan runs the full pipeline for one concern/narrative pair.
func (s *PlannerService) GeneratePlan(ctx context.Context, req PlanRequest) (*PlanResult, error) {
	startTime := time.Now()

	concern, err := core.ParseConcernID(req.Concern)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	resolved := s.resolver.Resolve(concern.String(), req.DomainHint)
	mode := req.Mode
	if mode == "" {
		mode = plan.ModeFast
	}

	execReq := pipeline.Request{
		RunID:           core.RunID(core.NewID()),
		Concern:         concern,
		Context:         resolved,
		Narrative:       req.Narrative,
		Mode:            mode,
		Strict:          req.Strict,
		Timeout:         req.Timeout,
		PromptOverrides: promptOverrides(req.PromptOverrides),
	}

	graph := task.CatalogFor(resolved.Archetype)
	result := &PlanResult{}

	outputs, err := s.executor.Execute(ctx, graph, execReq)
	switch {
	case err == nil:
		result.Plan = assemblePlan(execReq, outputs)
	case !req.Strict && recoverable(err):
		// External generation failed; substitute the reviewable template
		// skeleton instead of losing the run.
		if s.log != nil {
			s.log.Warn("plan generation for %s failed (%v), using template fallback", concern, err)
		}
		result.Plan = pipeline.TemplatePlan(execReq)
		result.FromTemplate = true
	default:
		if req.Strict && recoverable(err) {
			// Strict mode forbids the template substitute; the caller gets the
			// failure with the no-auto-fill contract spelled out.
			err = fmt.Errorf("%w: %w", core.ErrStrictNoAutoFill, err)
		}
		return nil, errors.GenerationError("plan generation failed", err)
	}

	engine := quality.NewDefaultEngine(mode)
	result.Verdict = engine.Assess(result.Plan)
	result.Validation = s.coupler.Validate(result.Plan, result.Verdict)

	if !result.Validation.IsValid && s.failAction == validation.FailActionBlock {
		return result, errors.QualityGateError("plan failed validation and fail action is block")
	}

	if s.store != nil {
		if err := s.store.SavePlan(ctx, result.Plan); err != nil {
			return result, errors.Wrap(err, "persist plan")
		}
		if verdictJSON, err := json.Marshal(result.Verdict); err == nil {
			if err := s.store.SaveVerdictJSON(ctx, result.Plan.Metadata.PlanningID, verdictJSON); err != nil {
				return result, errors.Wrap(err, "persist verdict")
			}
		}
	}

	result.RuntimeMs = time.Since(startTime).Milliseconds()
	return result, nil
}

// recoverable reports whether the failure can be absorbed by the template
// fallback: external generation failures and structural-check failures, but
// never deterministic preconditions like an empty narrative.
func recoverable(err error) bool {
	if stderrors.Is(err, core.ErrEmptyNarrative) {
		return false
	}
	return core.IsGenerationError(err) || stderrors.Is(err, core.ErrTaskValidation)
}

// promptOverrides converts string-keyed overrides from the transport layer
// into typed task keys.
func promptOverrides(in map[string]string) map[task.Type]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[task.Type]string, len(in))
	for k, v := range in {
		out[task.Type(k)] = v
	}
	return out
}

// LoadPlan fetches a stored plan by ID.
func (s *PlannerService) LoadPlan(ctx context.Context, id core.PlanID) (*plan.Plan, error) {
	if s.store == nil {
		return nil, core.ErrPlanNotFound
	}
	return s.store.LoadPlan(ctx, id)
}
