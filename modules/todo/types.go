package todo

import (
	"context"

	domain "github.com/example/todo-tracker/domain/todo"
)

// ListTodosRequest is the request for listing todos.
type ListTodosRequest struct {
	Status string `json:"status,omitempty"`
}

// ListTodosResponse is the response for listing todos.
type ListTodosResponse struct {
	Todos []domain.Todo `json:"todos"`
	Total int           `json:"total"`
}

// CreateTodoRequest is the request for creating a todo. A nil Title is
// reported as a validation failure.
type CreateTodoRequest struct {
	Title     *string `json:"title"`
	Completed bool    `json:"completed"`
}

// UpdateTodoRequest is the request for a partial update.
type UpdateTodoRequest struct {
	ID        uint    `json:"id"`
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// TodoResponse carries a single todo or a domain error code.
type TodoResponse struct {
	Todo      *domain.Todo `json:"todo,omitempty"`
	ErrorCode string       `json:"error_code,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// DeleteTodoRequest is the request for deleting a todo.
type DeleteTodoRequest struct {
	ID uint `json:"id"`
}

// DeleteTodoResponse is the response for deleting a todo.
type DeleteTodoResponse struct {
	Deleted   bool   `json:"deleted"`
	ErrorCode string `json:"error_code,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ClearTodosRequest is the request for a bulk delete.
type ClearTodosRequest struct{}

// ClearTodosResponse reports how many todos a bulk delete removed.
type ClearTodosResponse struct {
	Count int64 `json:"count"`
}

// PingRequest is the request for a store health probe.
type PingRequest struct{}

// PingResponse reports store reachability.
type PingResponse struct {
	Healthy bool   `json:"healthy"`
	Driver  string `json:"driver"`
	Message string `json:"message"`
}

// TodoPort is the contract driving adapters use to reach the task store.
type TodoPort interface {
	ListTodos(ctx context.Context, status domain.Status) ([]domain.Todo, error)
	CreateTodo(ctx context.Context, req *CreateTodoRequest) (*domain.Todo, error)
	UpdateTodo(ctx context.Context, id uint, patch domain.Patch) (*domain.Todo, error)
	DeleteTodo(ctx context.Context, id uint) error
	DeleteCompleted(ctx context.Context) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
	Ping(ctx context.Context) (*PingResponse, error)
}
