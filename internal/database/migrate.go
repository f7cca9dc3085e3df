package database

import (
	"context"
	"fmt"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		description TEXT NOT NULL,
		due_date_text TEXT,
		due_date DATE,
		notes TEXT,
		priority INTEGER NOT NULL DEFAULT 3 CHECK (priority BETWEEN 1 AND 4),
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed')),
		gcal_event_id TEXT,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		completed_at TIMESTAMP,
		deleted_at TIMESTAMP
	)
`

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS todos (
		id BIGSERIAL PRIMARY KEY,
		description TEXT NOT NULL,
		due_date_text TEXT,
		due_date DATE,
		notes TEXT,
		priority INTEGER NOT NULL DEFAULT 3 CHECK (priority BETWEEN 1 AND 4),
		status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'completed')),
		gcal_event_id TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL,
		completed_at TIMESTAMPTZ,
		deleted_at TIMESTAMPTZ
	)
`

// Indexes serve the list filters and the due-date sort.
var indexStatements = []string{
	`CREATE INDEX IF NOT EXISTS idx_todos_status_deleted ON todos (status, deleted_at)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_priority ON todos (priority)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_due_date ON todos (due_date)`,
}

// Migrate creates the todos table and its indexes. It is idempotent and runs
// on server startup and from the admin CLI.
func (db *DB) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if db.driver == DriverPostgres {
		schema = postgresSchema
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create todos table: %w", err)
	}
	for _, stmt := range indexStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
