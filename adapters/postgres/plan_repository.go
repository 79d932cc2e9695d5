package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"

	"hacplanner/domain/core"
	"hacplanner/domain/plan"
	"hacplanner/internal/errors"
	"hacplanner/ports"
)

// PlanRepositoryImpl implements ports.PlanStore for PostgreSQL
type PlanRepositoryImpl struct {
	db *sqlx.DB
}

// NewPlanRepository creates a new PostgreSQL plan repository
func NewPlanRepository(db *sqlx.DB) ports.PlanStore {
	return &PlanRepositoryImpl{db: db}
}

// SavePlan upserts the plan document keyed by planning ID
func (r *PlanRepositoryImpl) SavePlan(ctx context.Context, p *plan.Plan) error {
	document, err := plan.Encode(p)
	if err != nil {
		return errors.Wrap(err, "encode plan document")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO surveillance_plans (id, concern, domain, archetype, mode, document)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			concern = EXCLUDED.concern,
			domain = EXCLUDED.domain,
			archetype = EXCLUDED.archetype,
			mode = EXCLUDED.mode,
			document = EXCLUDED.document
	`, p.Metadata.PlanningID.String(), p.Metadata.Concern.String(),
		string(p.Metadata.Domain), string(p.Metadata.Archetype),
		string(p.Metadata.Mode), document)
	if err != nil {
		return errors.Wrap(err, "save plan")
	}
	return nil
}

// LoadPlan reads the stored document and canonicalizes it
func (r *PlanRepositoryImpl) LoadPlan(ctx context.Context, id core.PlanID) (*plan.Plan, error) {
	var document []byte
	err := r.db.GetContext(ctx, &document, `
		SELECT document FROM surveillance_plans WHERE id = $1
	`, id.String())
	if err == sql.ErrNoRows {
		return nil, core.ErrPlanNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "load plan")
	}
	return plan.Decode(document)
}

// SaveVerdictJSON attaches the quality verdict to an existing plan row
func (r *PlanRepositoryImpl) SaveVerdictJSON(ctx context.Context, id core.PlanID, verdict []byte) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE surveillance_plans SET verdict = $2 WHERE id = $1
	`, id.String(), verdict)
	if err != nil {
		return errors.Wrap(err, "save verdict")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrPlanNotFound
	}
	return nil
}

// ListPlanIDs returns plan IDs for a concern, newest first
func (r *PlanRepositoryImpl) ListPlanIDs(ctx context.Context, concern core.ConcernID) ([]core.PlanID, error) {
	var raw []string
	err := r.db.SelectContext(ctx, &raw, `
		SELECT id FROM surveillance_plans WHERE concern = $1 ORDER BY created_at DESC
	`, concern.String())
	if err != nil {
		return nil, errors.Wrap(err, "list plans")
	}

	ids := make([]core.PlanID, len(raw))
	for i, s := range raw {
		ids[i] = core.PlanID(s)
	}
	return ids, nil
}
