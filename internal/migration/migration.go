package migration

import (
	"context"

	"hypotest/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations. The statements are
// plain SQL understood by both SQLite and PostgreSQL.
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
	if err := r.createResultMetaTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create result_meta table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// created_at holds unix milliseconds so both dialects compare it the same way
func (r *MigrationRunner) createResultMetaTable(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS result_meta (
			task_id VARCHAR(36) PRIMARY KEY,
			original_name VARCHAR(255) NOT NULL,
			test VARCHAR(64) NOT NULL,
			test_display_name VARCHAR(255) NOT NULL,
			created_at BIGINT NOT NULL
		)
	`)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_result_meta_created_at ON result_meta(created_at)
	`)
	return err
}
