package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jakehq/jaketodo/internal/models"
	"github.com/jakehq/jaketodo/internal/validation"
)

// TodoRepository handles todo database operations. Every mutation runs as one
// atomic unit; the WHERE deleted_at IS NULL guard on each statement is what
// keeps soft-deleted rows invisible to everything except Purge.
type TodoRepository struct {
	db *DB
}

// NewTodoRepository creates a new todo repository
func NewTodoRepository(db *DB) *TodoRepository {
	return &TodoRepository{db: db}
}

const todoColumns = `id, description, due_date_text, due_date, notes, priority, status, gcal_event_id, created_at, updated_at, completed_at, deleted_at`

const selectTodoByID = `SELECT ` + todoColumns + ` FROM todos WHERE id = ? AND deleted_at IS NULL`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*models.Todo, error) {
	todo := &models.Todo{}
	var (
		dueDateText sql.NullString
		dueDate     sql.Null[models.Date]
		notes       sql.NullString
		gcalEventID sql.NullString
		completedAt sql.NullTime
		deletedAt   sql.NullTime
	)

	err := row.Scan(
		&todo.ID,
		&todo.Description,
		&dueDateText,
		&dueDate,
		&notes,
		&todo.Priority,
		&todo.Status,
		&gcalEventID,
		&todo.CreatedAt,
		&todo.UpdatedAt,
		&completedAt,
		&deletedAt,
	)
	if err != nil {
		return nil, err
	}

	if dueDateText.Valid {
		todo.DueDateText = &dueDateText.String
	}
	if dueDate.Valid {
		todo.DueDate = &dueDate.V
	}
	if notes.Valid {
		todo.Notes = &notes.String
	}
	if gcalEventID.Valid {
		todo.GCalEventID = &gcalEventID.String
	}
	if completedAt.Valid {
		todo.CompletedAt = &completedAt.Time
	}
	if deletedAt.Valid {
		todo.DeletedAt = &deletedAt.Time
	}

	return todo, nil
}

// dateArg converts an optional date into a driver argument. A typed nil
// pointer would still satisfy driver.Valuer and panic inside Value, so nil
// maps to SQL NULL explicitly.
func dateArg(d *models.Date) any {
	if d == nil {
		return nil
	}
	return *d
}

// Create validates and inserts a new todo, filling in its id, timestamps and
// initial pending status.
func (r *TodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	if err := validation.ValidateDescription(todo.Description); err != nil {
		return err
	}
	if err := validation.ValidatePriority(todo.Priority); err != nil {
		return err
	}

	now := time.Now().UTC()
	todo.Status = models.TodoStatusPending
	todo.CreatedAt = now
	todo.UpdatedAt = now
	todo.CompletedAt = nil
	todo.DeletedAt = nil

	query := `
		INSERT INTO todos (description, due_date_text, due_date, notes, priority, status, gcal_event_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query,
		todo.Description,
		todo.DueDateText,
		dateArg(todo.DueDate),
		todo.Notes,
		todo.Priority,
		todo.Status,
		todo.GCalEventID,
		todo.CreatedAt,
		todo.UpdatedAt,
	).Scan(&todo.ID)
	if err != nil {
		return &models.StoreError{Op: "create", Err: err}
	}

	return nil
}

// CreateBatch inserts all todos in one transaction. Every element is
// validated before the first insert, so one bad element rejects the whole
// batch and nothing persists.
func (r *TodoRepository) CreateBatch(ctx context.Context, todos []*models.Todo) error {
	for i, todo := range todos {
		if err := batchValidationError(i, validation.ValidateDescription(todo.Description)); err != nil {
			return err
		}
		if err := batchValidationError(i, validation.ValidatePriority(todo.Priority)); err != nil {
			return err
		}
	}

	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return &models.StoreError{Op: "create_batch", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	query := `
		INSERT INTO todos (description, due_date_text, due_date, notes, priority, status, gcal_event_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`
	for _, todo := range todos {
		todo.Status = models.TodoStatusPending
		todo.CreatedAt = now
		todo.UpdatedAt = now
		todo.CompletedAt = nil
		todo.DeletedAt = nil

		err := tx.QueryRowContext(ctx, query,
			todo.Description,
			todo.DueDateText,
			dateArg(todo.DueDate),
			todo.Notes,
			todo.Priority,
			todo.Status,
			todo.GCalEventID,
			todo.CreatedAt,
			todo.UpdatedAt,
		).Scan(&todo.ID)
		if err != nil {
			return &models.StoreError{Op: "create_batch", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &models.StoreError{Op: "create_batch", Err: err}
	}
	return nil
}

// batchValidationError prefixes a field error with its element index.
func batchValidationError(index int, err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		return &models.ValidationError{
			Field:  fmt.Sprintf("todos[%d].%s", index, verr.Field),
			Reason: verr.Reason,
		}
	}
	return err
}

// GetByID retrieves an active todo. Soft-deleted ids report ErrNotFound, the
// same as ids that never existed.
func (r *TodoRepository) GetByID(ctx context.Context, id int64) (*models.Todo, error) {
	todo, err := scanTodo(r.db.QueryRowContext(ctx, selectTodoByID, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, &models.StoreError{Op: "get", Err: err}
	}
	return todo, nil
}

// TodoFilter narrows List results. Nil fields match everything.
type TodoFilter struct {
	Status   *models.TodoStatus
	Priority *int
}

// List returns active todos matching the filter. Dated todos come first in
// ascending due-date order, undated ones after; priority and id break ties
// so the order is deterministic.
func (r *TodoRepository) List(ctx context.Context, filter TodoFilter) ([]*models.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE deleted_at IS NULL`
	var args []any

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*filter.Status))
	}
	if filter.Priority != nil {
		query += ` AND priority = ?`
		args = append(args, *filter.Priority)
	}

	query += ` ORDER BY CASE WHEN due_date IS NULL THEN 1 ELSE 0 END, due_date ASC, priority ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &models.StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	todos := make([]*models.Todo, 0)
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, &models.StoreError{Op: "list", Err: err}
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.StoreError{Op: "list", Err: err}
	}

	return todos, nil
}

// Update applies a partial update to an active todo. Only supplied fields
// change; due_date_text, due_date, notes and gcal_event_id may be cleared
// with an explicit null, description and priority may not. updated_at always
// refreshes, even for an empty update.
func (r *TodoRepository) Update(ctx context.Context, id int64, upd models.TodoUpdate) (*models.Todo, error) {
	if upd.Description.Set {
		if !upd.Description.Valid {
			return nil, &models.ValidationError{Field: "description", Reason: "must not be null"}
		}
		if err := validation.ValidateDescription(upd.Description.Value); err != nil {
			return nil, err
		}
	}
	if upd.Priority.Set {
		if !upd.Priority.Valid {
			return nil, &models.ValidationError{Field: "priority", Reason: "must not be null"}
		}
		if err := validation.ValidatePriority(upd.Priority.Value); err != nil {
			return nil, err
		}
	}

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Description.Set {
		sets = append(sets, "description = ?")
		args = append(args, upd.Description.Value)
	}
	if upd.DueDateText.Set {
		sets = append(sets, "due_date_text = ?")
		args = append(args, optionalArg(upd.DueDateText))
	}
	if upd.DueDate.Set {
		sets = append(sets, "due_date = ?")
		args = append(args, optionalArg(upd.DueDate))
	}
	if upd.Notes.Set {
		sets = append(sets, "notes = ?")
		args = append(args, optionalArg(upd.Notes))
	}
	if upd.Priority.Set {
		sets = append(sets, "priority = ?")
		args = append(args, upd.Priority.Value)
	}
	if upd.GCalEventID.Set {
		sets = append(sets, "gcal_event_id = ?")
		args = append(args, optionalArg(upd.GCalEventID))
	}

	query := `UPDATE todos SET ` + strings.Join(sets, ", ") + ` WHERE id = ? AND deleted_at IS NULL`
	args = append(args, id)

	return r.mutate(ctx, "update", id, query, args...)
}

// optionalArg converts a supplied Optional into a driver argument; explicit
// null maps to SQL NULL.
func optionalArg[T any](o models.Optional[T]) any {
	if !o.Valid {
		return nil
	}
	return o.Value
}

// Complete marks a todo completed. completed_at is only stamped when the
// todo leaves pending; completing an already-completed todo keeps the
// original completion time and just refreshes updated_at.
func (r *TodoRepository) Complete(ctx context.Context, id int64) (*models.Todo, error) {
	now := time.Now().UTC()
	query := `
		UPDATE todos
		SET status = ?,
			completed_at = CASE WHEN status = ? THEN ? ELSE completed_at END,
			updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.mutate(ctx, "complete", id, query,
		models.TodoStatusCompleted, models.TodoStatusPending, now, now, id)
}

// Reopen returns a todo to pending and clears completed_at. Reopening an
// already-pending todo is a safe no-op apart from updated_at.
func (r *TodoRepository) Reopen(ctx context.Context, id int64) (*models.Todo, error) {
	now := time.Now().UTC()
	query := `
		UPDATE todos
		SET status = ?, completed_at = NULL, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`
	return r.mutate(ctx, "reopen", id, query, models.TodoStatusPending, now, id)
}

// mutate runs an UPDATE and reloads the row in one transaction so the caller
// observes the exact state it committed. Zero affected rows means the id is
// missing or soft-deleted.
func (r *TodoRepository) mutate(ctx context.Context, op string, id int64, query string, args ...any) (*models.Todo, error) {
	tx, err := r.db.BeginTx(ctx)
	if err != nil {
		return nil, &models.StoreError{Op: op, Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, &models.StoreError{Op: op, Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, &models.StoreError{Op: op, Err: err}
	}
	if affected == 0 {
		return nil, models.ErrNotFound
	}

	todo, err := scanTodo(tx.QueryRowContext(ctx, selectTodoByID, id))
	if err != nil {
		return nil, &models.StoreError{Op: op, Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &models.StoreError{Op: op, Err: err}
	}
	return todo, nil
}

// SoftDelete hides an active todo by stamping deleted_at. Deleting an
// already-deleted todo reports ErrNotFound, same as get.
func (r *TodoRepository) SoftDelete(ctx context.Context, id int64) error {
	now := time.Now().UTC()
	query := `UPDATE todos SET deleted_at = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, now, now, id)
	if err != nil {
		return &models.StoreError{Op: "delete", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return &models.StoreError{Op: "delete", Err: err}
	}
	if affected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Purge permanently removes every soft-deleted todo and returns how many
// rows went away. Active todos are untouched.
func (r *TodoRepository) Purge(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE deleted_at IS NOT NULL`)
	if err != nil {
		return 0, &models.StoreError{Op: "purge", Err: err}
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, &models.StoreError{Op: "purge", Err: err}
	}
	return count, nil
}
