package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestRebind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		driver   string
		query    string
		expected string
	}{
		{
			name:     "sqlite passes through",
			driver:   DriverSQLite,
			query:    `SELECT * FROM todos WHERE id = ? AND status = ?`,
			expected: `SELECT * FROM todos WHERE id = ? AND status = ?`,
		},
		{
			name:     "postgres numbers placeholders",
			driver:   DriverPostgres,
			query:    `UPDATE todos SET notes = ?, updated_at = ? WHERE id = ?`,
			expected: `UPDATE todos SET notes = $1, updated_at = $2 WHERE id = $3`,
		},
		{
			name:     "postgres no placeholders",
			driver:   DriverPostgres,
			query:    `DELETE FROM todos WHERE deleted_at IS NOT NULL`,
			expected: `DELETE FROM todos WHERE deleted_at IS NOT NULL`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			db := &DB{driver: tt.driver}
			if got := db.Rebind(tt.query); got != tt.expected {
				t.Errorf("Rebind() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestNew_UnsupportedDriver(t *testing.T) {
	t.Parallel()

	if _, err := New("mysql", "dsn"); err == nil {
		t.Error("Expected error for unsupported driver")
	}
}

func TestNew_SQLiteCreatesParentDir(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "dir", "todos.db")
	db, err := New(DriverSQLite, path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	if err := db.PingContext(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
	if db.Driver() != DriverSQLite {
		t.Errorf("Driver() = %q, want sqlite", db.Driver())
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	db, err := New(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			t.Errorf("Close failed: %v", err)
		}
	}()

	ctx := context.Background()
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("first Migrate failed: %v", err)
	}
	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}
