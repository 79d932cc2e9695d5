package fsstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/domain/refine"
	"hacplanner/internal/errors"
	"hacplanner/ports"
)

// Store persists plans, prompts, and refinement history as JSON documents in
// a directory tree. Layout:
//
//	<root>/plans/<id>.json
//	<root>/plans/<id>.verdict.json
//	<root>/prompts/<id>.txt
//	<root>/refinements/<id>.json
//	<root>/batches/<name>.json
type Store struct {
	root string
}

// New creates a store rooted at dir, creating subdirectories as needed.
func New(dir string) (*Store, error) {
	for _, sub := range []string{"plans", "prompts", "refinements", "batches"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, errors.Wrap(err, "create store directory")
		}
	}
	return &Store{root: dir}, nil
}

func (s *Store) planPath(id core.PlanID) string {
	return filepath.Join(s.root, "plans", fmt.Sprintf("%s.json", id))
}

// SavePlan writes the plan in the current schema version.
func (s *Store) SavePlan(_ context.Context, p *plan.Plan) error {
	data, err := plan.Encode(p)
	if err != nil {
		return errors.Wrap(err, "encode plan")
	}
	return writeAtomic(s.planPath(p.Metadata.PlanningID), data)
}

// LoadPlan reads and canonicalizes a stored plan; older schema versions are
// converted on read.
func (s *Store) LoadPlan(_ context.Context, id core.PlanID) (*plan.Plan, error) {
	data, err := os.ReadFile(s.planPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrPlanNotFound
		}
		return nil, errors.Wrap(err, "read plan")
	}
	return plan.Decode(data)
}

// SaveVerdictJSON stores the quality verdict next to its plan.
func (s *Store) SaveVerdictJSON(_ context.Context, id core.PlanID, verdict []byte) error {
	path := filepath.Join(s.root, "plans", fmt.Sprintf("%s.verdict.json", id))
	return writeAtomic(path, verdict)
}

func (s *Store) promptPath(id core.PromptID) string {
	return filepath.Join(s.root, "prompts", fmt.Sprintf("%s.txt", id))
}

func (s *Store) LoadPrompt(_ context.Context, id core.PromptID) (string, error) {
	data, err := os.ReadFile(s.promptPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return "", core.ErrNotFound
		}
		return "", errors.Wrap(err, "read prompt")
	}
	return string(data), nil
}

func (s *Store) SavePrompt(_ context.Context, id core.PromptID, text string) error {
	return writeAtomic(s.promptPath(id), []byte(text))
}

// SaveHistory writes the full refinement state; each save replaces the
// previous snapshot, history inside the state is append-only.
func (s *Store) SaveHistory(_ context.Context, id core.PromptID, state *refine.State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode refinement state")
	}
	path := filepath.Join(s.root, "refinements", fmt.Sprintf("%s.json", id))
	return writeAtomic(path, data)
}

// LoadBatch reads a frozen eval batch and verifies its recorded hash.
func (s *Store) LoadBatch(_ context.Context, name string) (*refine.EvalBatch, error) {
	path := filepath.Join(s.root, "batches", fmt.Sprintf("%s.json", name))
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound
		}
		return nil, errors.Wrap(err, "read eval batch")
	}

	var batch refine.EvalBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, errors.Wrap(err, "decode eval batch")
	}
	if batch.Hash != "" && batch.Hash != batch.Fingerprint() {
		return nil, errors.InvalidInput(fmt.Sprintf("eval batch %s content does not match its recorded hash", name))
	}
	return &batch, nil
}

// SaveBatch writes a batch with its fingerprint filled in.
func (s *Store) SaveBatch(_ context.Context, batch *refine.EvalBatch) error {
	batch.Hash = batch.Fingerprint()
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode eval batch")
	}
	path := filepath.Join(s.root, "batches", fmt.Sprintf("%s.json", batch.Name))
	return writeAtomic(path, data)
}

// writeAtomic writes via a temp file and rename so readers never observe a
// partial document.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write temp file")
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return errors.Wrap(err, "finalize write")
	}
	return nil
}

var (
	_ ports.PlanStore       = (*Store)(nil)
	_ ports.PromptStore     = (*Store)(nil)
	_ ports.RefinementStore = (*Store)(nil)
	_ ports.EvalBatchSource = (*Store)(nil)
)
