package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/domain/task"
	"hacplanner/internal"
	"hacplanner/internal/errors"
	"hacplanner/ports"
)

// InterrogationMode selects what the reviewer is asking of a stored plan.
type InterrogationMode string

const (
	// ModeExplain answers a free-text question about the plan's reasoning.
	ModeExplain InterrogationMode = "explain"
	// ModeSummarize condenses the plan for a reviewer.
	ModeSummarize InterrogationMode = "summarize"
	// ModeValidate asks for an independent critique of the plan's signals
	// against its narrative.
	ModeValidate InterrogationMode = "validate"
)

// InterrogationService answers reviewer questions about stored plans.
type InterrogationService struct {
	store ports.PlanStore
	gen   ports.Generator
	log   *internal.Logger
}

// InterrogationRequest parameterizes one question.
type InterrogationRequest struct {
	PlanID   core.PlanID
	Mode     InterrogationMode
	Question string
	Timeout  time.Duration
}

// InterrogationResult is the generated answer.
type InterrogationResult struct {
	PlanID core.PlanID       `json:"plan_id"`
	Mode   InterrogationMode `json:"mode"`
	Answer string            `json:"answer"`
}

// NewInterrogationService creates an interrogation service.
func NewInterrogationService(store ports.PlanStore, gen ports.Generator, log *internal.Logger) *InterrogationService {
	return &InterrogationService{store: store, gen: gen, log: log}
}

const interrogationSystem = "You are a clinical surveillance reviewer assistant. Answer strictly from the plan document provided; say so when the plan does not contain the answer."

// Interrogate loads the plan and answers the question in the requested mode.
func (s *InterrogationService) Interrogate(ctx context.Context, req InterrogationRequest) (*InterrogationResult, error) {
	mode := req.Mode
	if mode == "" {
		mode = ModeExplain
	}
	if mode != ModeExplain && mode != ModeSummarize && mode != ModeValidate {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown interrogation mode %q", mode))
	}
	if mode == ModeExplain && strings.TrimSpace(req.Question) == "" {
		return nil, errors.InvalidInput("explain mode requires a question")
	}

	p, err := s.store.LoadPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	prompt, err := interrogationPrompt(mode, req.Question, p)
	if err != nil {
		return nil, err
	}

	gen, err := s.gen.Generate(ctx, ports.GenerateRequest{
		Prompt:   prompt,
		System:   interrogationSystem,
		Contract: task.ContractNone,
		Timeout:  req.Timeout,
	})
	if err != nil {
		return nil, errors.GenerationError("plan interrogation failed", err)
	}

	return &InterrogationResult{PlanID: req.PlanID, Mode: mode, Answer: gen.Text}, nil
}

func interrogationPrompt(mode InterrogationMode, question string, p *plan.Plan) (string, error) {
	document, err := plan.Encode(p)
	if err != nil {
		return "", errors.Wrap(err, "encode plan for interrogation")
	}

	var instruction string
	switch mode {
	case ModeExplain:
		instruction = fmt.Sprintf("Answer the reviewer's question about this surveillance plan.\n\nQuestion: %s", question)
	case ModeSummarize:
		instruction = "Summarize this surveillance plan for a clinical reviewer in at most five sentences: what it watches for, how events are determined, and any gaps."
	case ModeValidate:
		instruction = "Critique this surveillance plan: do its signals follow from the case narrative, are the criteria determinations supported, and what is missing?"
	}

	return fmt.Sprintf("%s\n\nPlan document:\n%s", instruction, document), nil
}
