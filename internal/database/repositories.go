package database

import (
	"context"

	"github.com/jakehq/jaketodo/internal/models"
)

// TodoStore is the repository surface the HTTP handlers depend on.
// This interface enables better testability by allowing mock implementations
type TodoStore interface {
	Create(ctx context.Context, todo *models.Todo) error
	CreateBatch(ctx context.Context, todos []*models.Todo) error
	GetByID(ctx context.Context, id int64) (*models.Todo, error)
	List(ctx context.Context, filter TodoFilter) ([]*models.Todo, error)
	Update(ctx context.Context, id int64, upd models.TodoUpdate) (*models.Todo, error)
	SoftDelete(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) (*models.Todo, error)
	Reopen(ctx context.Context, id int64) (*models.Todo, error)
	Purge(ctx context.Context) (int64, error)
}

// Ensure the concrete type implements the interface
var _ TodoStore = (*TodoRepository)(nil)
