package migration

import (
	"context"

	"sheetimport/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	for _, step := range r.steps() {
		if _, err := db.ExecContext(ctx, step.sql); err != nil {
			return errors.Wrap(err, "failed to "+step.name)
		}
	}
	return nil
}

type step struct {
	name string
	sql  string
}

func (r *MigrationRunner) steps() []step {
	return []step{
		{"create tasks table", `
			CREATE TABLE IF NOT EXISTS tasks (
				id UUID PRIMARY KEY,
				project_id VARCHAR(255) NOT NULL,
				source_row INTEGER NOT NULL DEFAULT 0,
				title TEXT NOT NULL CHECK (title <> ''),
				description TEXT NOT NULL DEFAULT '',
				status VARCHAR(20) NOT NULL DEFAULT 'todo',
				priority VARCHAR(20) NOT NULL DEFAULT 'medium',
				progress SMALLINT NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
				start_date DATE,
				due_date DATE,
				estimated_hours DOUBLE PRECISION,
				actual_hours DOUBLE PRECISION,
				assignee_id VARCHAR(255),
				assignee_email VARCHAR(255),
				assignee_text TEXT NOT NULL DEFAULT '',
				tags TEXT[] NOT NULL DEFAULT '{}',
				color VARCHAR(7),
				created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
			)
		`},
		{"add tasks source_row column", `
			ALTER TABLE tasks ADD COLUMN IF NOT EXISTS source_row INTEGER NOT NULL DEFAULT 0
		`},
		{"create tasks indexes", `
			CREATE INDEX IF NOT EXISTS idx_tasks_project ON tasks(project_id, created_at);
			CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_email) WHERE assignee_email IS NOT NULL
		`},
	}
}
