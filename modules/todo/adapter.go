package todo

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/todo-tracker/domain/todo"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// todoAdapter implements TodoPort over the todo module's services.
type todoAdapter struct {
	container mono.ServiceContainer
}

// NewTodoAdapter creates a TodoPort backed by container, the ServiceContainer
// received via SetDependencyServiceContainer.
func NewTodoAdapter(container mono.ServiceContainer) TodoPort {
	if container == nil {
		panic("todo adapter requires non-nil ServiceContainer")
	}
	return &todoAdapter{container: container}
}

// call invokes service on container with typed request and response values.
func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}

// ListTodos lists todos matching status via the list service.
func (a *todoAdapter) ListTodos(ctx context.Context, status domain.Status) ([]domain.Todo, error) {
	req := ListTodosRequest{Status: string(status)}
	var resp ListTodosResponse
	if err := call(ctx, a.container, ServiceList, &req, &resp); err != nil {
		return nil, err
	}
	if resp.Todos == nil {
		resp.Todos = make([]domain.Todo, 0)
	}
	return resp.Todos, nil
}

// CreateTodo creates a todo via the create service.
func (a *todoAdapter) CreateTodo(ctx context.Context, req *CreateTodoRequest) (*domain.Todo, error) {
	var resp TodoResponse
	if err := call(ctx, a.container, ServiceCreate, req, &resp); err != nil {
		return nil, err
	}
	return unwrapTodo(resp)
}

// UpdateTodo applies a partial update via the update service.
func (a *todoAdapter) UpdateTodo(ctx context.Context, id uint, patch domain.Patch) (*domain.Todo, error) {
	req := UpdateTodoRequest{ID: id, Title: patch.Title, Completed: patch.Completed}
	var resp TodoResponse
	if err := call(ctx, a.container, ServiceUpdate, &req, &resp); err != nil {
		return nil, err
	}
	return unwrapTodo(resp)
}

// DeleteTodo deletes a todo via the delete service.
func (a *todoAdapter) DeleteTodo(ctx context.Context, id uint) error {
	req := DeleteTodoRequest{ID: id}
	var resp DeleteTodoResponse
	if err := call(ctx, a.container, ServiceDelete, &req, &resp); err != nil {
		return err
	}
	if err := domain.ErrorFromCode(resp.ErrorCode, resp.Error); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("todo not deleted: %d", id)
	}
	return nil
}

// DeleteCompleted removes completed todos via the delete-completed service.
func (a *todoAdapter) DeleteCompleted(ctx context.Context) (int64, error) {
	var resp ClearTodosResponse
	if err := call(ctx, a.container, ServiceDeleteCompleted, &ClearTodosRequest{}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// DeleteAll removes every todo via the delete-all service.
func (a *todoAdapter) DeleteAll(ctx context.Context) (int64, error) {
	var resp ClearTodosResponse
	if err := call(ctx, a.container, ServiceDeleteAll, &ClearTodosRequest{}, &resp); err != nil {
		return 0, err
	}
	return resp.Count, nil
}

// Ping probes the store via the ping service.
func (a *todoAdapter) Ping(ctx context.Context) (*PingResponse, error) {
	var resp PingResponse
	if err := call(ctx, a.container, ServicePing, &PingRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func unwrapTodo(resp TodoResponse) (*domain.Todo, error) {
	if err := domain.ErrorFromCode(resp.ErrorCode, resp.Error); err != nil {
		return nil, err
	}
	if resp.Todo == nil {
		return nil, fmt.Errorf("empty todo in response")
	}
	return resp.Todo, nil
}
