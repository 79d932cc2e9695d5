package testkit

import (
	"context"
	"sync"

	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/domain/refine"
	"hacplanner/ports"
)

// TestKit provides in-memory fakes and synthetic fixtures for service and
// adapter tests.
type TestKit struct {
	Plans   *InMemoryPlanStore
	Prompts *InMemoryPromptStore
	Runs    *InMemoryRefinementStore
	Batches *InMemoryBatchSource
	Roster  *StaticRoster
}

// NewTestKit creates a kit with empty stores and a small default roster.
func NewTestKit() *TestKit {
	return &TestKit{
		Plans:   NewInMemoryPlanStore(),
		Prompts: &InMemoryPromptStore{},
		Runs:    &InMemoryRefinementStore{},
		Batches: &InMemoryBatchSource{},
		Roster:  &StaticRoster{Concerns: []string{"CLABSI", "CAUTI", "SSI", "C4"}},
	}
}

// InMemoryPlanStore is a map-backed ports.PlanStore.
type InMemoryPlanStore struct {
	mu       sync.Mutex
	plans    map[core.PlanID]*plan.Plan
	verdicts map[core.PlanID][]byte
}

func NewInMemoryPlanStore() *InMemoryPlanStore {
	return &InMemoryPlanStore{
		plans:    map[core.PlanID]*plan.Plan{},
		verdicts: map[core.PlanID][]byte{},
	}
}

func (s *InMemoryPlanStore) SavePlan(_ context.Context, p *plan.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plans[p.Metadata.PlanningID] = p
	return nil
}

func (s *InMemoryPlanStore) LoadPlan(_ context.Context, id core.PlanID) (*plan.Plan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plans[id]
	if !ok {
		return nil, core.ErrPlanNotFound
	}
	return p, nil
}

func (s *InMemoryPlanStore) SaveVerdictJSON(_ context.Context, id core.PlanID, verdict []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verdicts[id] = verdict
	return nil
}

// VerdictJSON returns the stored verdict bytes for assertions.
func (s *InMemoryPlanStore) VerdictJSON(id core.PlanID) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.verdicts[id]
}

// Count returns the number of stored plans.
func (s *InMemoryPlanStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.plans)
}

// InMemoryPromptStore is a map-backed ports.PromptStore.
type InMemoryPromptStore struct {
	mu      sync.Mutex
	prompts map[core.PromptID]string
}

func (s *InMemoryPromptStore) LoadPrompt(_ context.Context, id core.PromptID) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, ok := s.prompts[id]
	if !ok {
		return "", core.ErrNotFound
	}
	return text, nil
}

func (s *InMemoryPromptStore) SavePrompt(_ context.Context, id core.PromptID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prompts == nil {
		s.prompts = map[core.PromptID]string{}
	}
	s.prompts[id] = text
	return nil
}

// InMemoryRefinementStore records refinement states per prompt.
type InMemoryRefinementStore struct {
	mu     sync.Mutex
	states map[core.PromptID]*refine.State
}

func (s *InMemoryRefinementStore) SaveHistory(_ context.Context, id core.PromptID, state *refine.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.states == nil {
		s.states = map[core.PromptID]*refine.State{}
	}
	s.states[id] = state
	return nil
}

// State returns the last saved state for assertions.
func (s *InMemoryRefinementStore) State(id core.PromptID) *refine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id]
}

// InMemoryBatchSource serves registered eval batches by name.
type InMemoryBatchSource struct {
	mu      sync.Mutex
	batches map[string]*refine.EvalBatch
}

func (s *InMemoryBatchSource) Register(b *refine.EvalBatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.batches == nil {
		s.batches = map[string]*refine.EvalBatch{}
	}
	s.batches[b.Name] = b
}

func (s *InMemoryBatchSource) LoadBatch(_ context.Context, name string) (*refine.EvalBatch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.batches[name]
	if !ok {
		return nil, core.ErrNotFound
	}
	return b, nil
}

// StaticRoster is a fixed ports.ConcernRoster.
type StaticRoster struct {
	Concerns []string
}

func (r *StaticRoster) ListConcerns(_ context.Context) ([]string, error) {
	out := make([]string, len(r.Concerns))
	copy(out, r.Concerns)
	return out, nil
}

var (
	_ ports.PlanStore       = (*InMemoryPlanStore)(nil)
	_ ports.PromptStore     = (*InMemoryPromptStore)(nil)
	_ ports.RefinementStore = (*InMemoryRefinementStore)(nil)
	_ ports.EvalBatchSource = (*InMemoryBatchSource)(nil)
	_ ports.ConcernRoster   = (*StaticRoster)(nil)
)
