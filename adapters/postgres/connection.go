package postgres

import (
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"hacplanner/internal/errors"
)

// Connect opens and pings a PostgreSQL connection.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "connect to postgres")
	}
	return db, nil
}

// Schema is the DDL for the planning tables. Applied by cmd/api on startup
// when the tables are missing.
const Schema = `
CREATE TABLE IF NOT EXISTS surveillance_plans (
	id TEXT PRIMARY KEY,
	concern TEXT NOT NULL,
	domain TEXT NOT NULL,
	archetype TEXT NOT NULL,
	mode TEXT NOT NULL,
	document JSONB NOT NULL,
	verdict JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_surveillance_plans_concern ON surveillance_plans (concern);

CREATE TABLE IF NOT EXISTS prompt_artifacts (
	id TEXT PRIMARY KEY,
	content TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS refinement_runs (
	prompt_id TEXT PRIMARY KEY,
	state JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema applies the DDL idempotently.
func EnsureSchema(db *sqlx.DB) error {
	if _, err := db.Exec(Schema); err != nil {
		return errors.Wrap(err, "apply planning schema")
	}
	return nil
}
