package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"

	"hacplanner/domain/core"
	"hacplanner/domain/refine"
	"hacplanner/internal/errors"
	"hacplanner/ports"
)

// RefinementRepositoryImpl implements ports.PromptStore and
// ports.RefinementStore for PostgreSQL
type RefinementRepositoryImpl struct {
	db *sqlx.DB
}

// NewRefinementRepository creates a new PostgreSQL refinement repository
func NewRefinementRepository(db *sqlx.DB) *RefinementRepositoryImpl {
	return &RefinementRepositoryImpl{db: db}
}

// LoadPrompt reads the current prompt artifact text
func (r *RefinementRepositoryImpl) LoadPrompt(ctx context.Context, id core.PromptID) (string, error) {
	var content string
	err := r.db.GetContext(ctx, &content, `
		SELECT content FROM prompt_artifacts WHERE id = $1
	`, id.String())
	if err == sql.ErrNoRows {
		return "", core.ErrNotFound
	}
	if err != nil {
		return "", errors.Wrap(err, "load prompt")
	}
	return content, nil
}

// SavePrompt upserts the prompt artifact; only the best-so-far variant is
// ever written back
func (r *RefinementRepositoryImpl) SavePrompt(ctx context.Context, id core.PromptID, text string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO prompt_artifacts (id, content, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (id) DO UPDATE SET content = EXCLUDED.content, updated_at = NOW()
	`, id.String(), text)
	if err != nil {
		return errors.Wrap(err, "save prompt")
	}
	return nil
}

// SaveHistory stores the refinement run state as a JSONB document
func (r *RefinementRepositoryImpl) SaveHistory(ctx context.Context, id core.PromptID, state *refine.State) error {
	document, err := json.Marshal(state)
	if err != nil {
		return errors.Wrap(err, "encode refinement state")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO refinement_runs (prompt_id, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (prompt_id) DO UPDATE SET state = EXCLUDED.state, updated_at = NOW()
	`, id.String(), document)
	if err != nil {
		return errors.Wrap(err, "save refinement history")
	}
	return nil
}

// LoadHistory reads the last saved refinement state
func (r *RefinementRepositoryImpl) LoadHistory(ctx context.Context, id core.PromptID) (*refine.State, error) {
	var document []byte
	err := r.db.GetContext(ctx, &document, `
		SELECT state FROM refinement_runs WHERE prompt_id = $1
	`, id.String())
	if err == sql.ErrNoRows {
		return nil, core.ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load refinement history")
	}

	var state refine.State
	if err := json.Unmarshal(document, &state); err != nil {
		return nil, errors.Wrap(err, "decode refinement state")
	}
	return &state, nil
}

var (
	_ ports.PromptStore     = (*RefinementRepositoryImpl)(nil)
	_ ports.RefinementStore = (*RefinementRepositoryImpl)(nil)
)
