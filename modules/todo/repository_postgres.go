package todo

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/example/todo-tracker/domain/todo"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS todos (
		id         BIGSERIAL PRIMARY KEY,
		title      VARCHAR(255) NOT NULL,
		completed  BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_completed ON todos (completed)`,
	`CREATE INDEX IF NOT EXISTS idx_todos_created_at ON todos (created_at)`,
}

const todoColumns = "id, title, completed, created_at, updated_at"

// PostgresRepository stores todos in PostgreSQL through a pgx pool.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Store = (*PostgresRepository)(nil)

// OpenPostgres connects to databaseURL and creates the schema if needed.
func OpenPostgres(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	for _, stmt := range postgresSchema {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return pool, nil
}

// NewPostgresRepository creates a repository on an open pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Driver returns the backend name.
func (r *PostgresRepository) Driver() string {
	return "postgres"
}

// List returns todos matching status, newest first.
func (r *PostgresRepository) List(ctx context.Context, status domain.Status) ([]domain.Todo, error) {
	query := "SELECT " + todoColumns + " FROM todos"
	var args []any
	switch status {
	case domain.StatusActive:
		query += " WHERE completed = $1"
		args = append(args, false)
	case domain.StatusCompleted:
		query += " WHERE completed = $1"
		args = append(args, true)
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	todos, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Todo, error) {
		return scanTodo(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan todos: %w", err)
	}
	if todos == nil {
		todos = make([]domain.Todo, 0)
	}
	return todos, nil
}

// Create inserts t and fills in its ID and timestamps.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Todo) error {
	row := r.pool.QueryRow(ctx,
		"INSERT INTO todos (title, completed) VALUES ($1, $2) RETURNING "+todoColumns,
		t.Title, t.Completed,
	)
	created, err := scanTodo(row)
	if err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	*t = created
	return nil
}

// Update applies patch to the todo with id and returns the stored row.
func (r *PostgresRepository) Update(ctx context.Context, id uint, patch domain.Patch) (*domain.Todo, error) {
	row := r.pool.QueryRow(ctx,
		`UPDATE todos
		 SET title = COALESCE($2, title),
		     completed = COALESCE($3, completed),
		     updated_at = now()
		 WHERE id = $1
		 RETURNING `+todoColumns,
		int64(id), patch.Title, patch.Completed,
	)
	updated, err := scanTodo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return &updated, nil
}

// Delete removes the todo with id.
func (r *PostgresRepository) Delete(ctx context.Context, id uint) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM todos WHERE id = $1", int64(id))
	if err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCompleted removes every completed todo in one statement.
func (r *PostgresRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM todos WHERE completed = TRUE")
	if err != nil {
		return 0, fmt.Errorf("failed to delete completed todos: %w", err)
	}
	return tag.RowsAffected(), nil
}

// DeleteAll removes every todo in one statement.
func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, "DELETE FROM todos")
	if err != nil {
		return 0, fmt.Errorf("failed to delete all todos: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Ping checks the pool.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close releases the pool.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (domain.Todo, error) {
	var (
		t  domain.Todo
		id int64
	)
	if err := row.Scan(&id, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return domain.Todo{}, err
	}
	t.ID = uint(id)
	return t, nil
}
