package todo

import "context"

// Repository is the persistence port for todos.
//
// Implementations assign ID, CreatedAt and UpdatedAt, refresh UpdatedAt on
// every update, list newest first, and return ErrNotFound from Update and
// Delete when no row matched. Bulk deletes are atomic and return the number
// of rows removed.
type Repository interface {
	List(ctx context.Context, status Status) ([]Todo, error)
	Create(ctx context.Context, t *Todo) error
	Update(ctx context.Context, id uint, patch Patch) (*Todo, error)
	Delete(ctx context.Context, id uint) error
	DeleteCompleted(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}
