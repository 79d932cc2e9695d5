package refine

import (
	"encoding/json"

	"hacplanner/domain/core"
)

// EvalCase is one frozen test case with its expected assertions.
type EvalCase struct {
	ID              core.EvalCaseID `json:"id"`
	Narrative       string          `json:"narrative"`
	ExpectedSignals []string        `json:"expected_signals,omitempty"`
	ExpectedPhrases []string        `json:"expected_phrases,omitempty"`
}

// EvalBatch is a fixed, versioned set of test cases. The refinement loop
// treats it as frozen input: mutating it to make tuning easier destroys the
// meaning of the optimizer.
type EvalBatch struct {
	Name    string         `json:"name"`
	Version string         `json:"version"`
	Cases   []EvalCase     `json:"cases"`
	Hash    core.BatchHash `json:"hash,omitempty"`
}

// Fingerprint computes the batch hash over its serialized cases.
func (b *EvalBatch) Fingerprint() core.BatchHash {
	data, _ := json.Marshal(b.Cases)
	return core.NewBatchHash(data)
}

// HistoryEntry records one iteration of the refinement loop. History is
// append-only.
type HistoryEntry struct {
	Iteration     int            `json:"iteration"`
	Score         float64        `json:"score"`
	DeltaFromBest float64        `json:"delta_from_best"`
	Accepted      bool           `json:"accepted"`
	RolledBack    bool           `json:"rolled_back"`
	ChangeNote    string         `json:"change_note,omitempty"`
	At            core.Timestamp `json:"at"`
}

// Outcome classifies how a refinement run ended.
type Outcome string

const (
	OutcomePerfect    Outcome = "perfect_score"
	OutcomeNoImprove  Outcome = "no_improvement_limit"
	OutcomeIterCap    Outcome = "iteration_cap"
	OutcomeInProgress Outcome = "in_progress"
)

// State is the refinement loop's only long-lived mutable state. It is not
// safe for concurrent invocation against the same prompt artifact; callers
// serialize refinement runs per task/concern pair.
type State struct {
	PromptID      core.PromptID  `json:"prompt_id"`
	Iteration     int            `json:"iteration"`
	BestScore     float64        `json:"best_score"`
	BestArtifact  string         `json:"best_artifact"`
	NoImprove     int            `json:"no_improve_count"`
	Outcome       Outcome        `json:"outcome"`
	BatchHash     core.BatchHash `json:"batch_hash,omitempty"`
	History       []HistoryEntry `json:"history"`
}

// Append adds a history entry; entries are never rewritten.
func (s *State) Append(e HistoryEntry) {
	s.History = append(s.History, e)
}
