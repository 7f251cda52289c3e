package todo

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/todo-tracker/domain/todo"
	"github.com/example/todo-tracker/events"
	"github.com/go-monolith/mono"
)

// listTodos handles the list service request. Each call reads the store
// directly so a listing never predates a write acknowledged before it.
func (m *TodoModule) listTodos(ctx context.Context, req ListTodosRequest, _ *mono.Msg) (ListTodosResponse, error) {
	todos, err := m.repo.List(ctx, domain.ParseStatus(req.Status))
	if err != nil {
		return ListTodosResponse{}, err
	}
	return ListTodosResponse{Todos: todos, Total: len(todos)}, nil
}

// createTodo handles the create service request.
func (m *TodoModule) createTodo(ctx context.Context, req CreateTodoRequest, _ *mono.Msg) (TodoResponse, error) {
	if req.Title == nil {
		return errorResponse(domain.ValidationError("title is required"))
	}
	title, err := domain.NormalizeTitle(*req.Title)
	if err != nil {
		return errorResponse(err)
	}

	t := &domain.Todo{Title: title, Completed: req.Completed}
	if err := m.repo.Create(ctx, t); err != nil {
		return TodoResponse{}, err
	}

	m.logger.Info("Todo created", "id", t.ID)
	m.publish("TodoCreated", t.ID, func() error {
		return events.TodoCreatedV1.Publish(m.eventBus, events.TodoCreatedEvent{
			TodoID:    t.ID,
			Title:     t.Title,
			Completed: t.Completed,
			CreatedAt: t.CreatedAt,
		}, nil)
	})

	return TodoResponse{Todo: t}, nil
}

// updateTodo handles the update service request.
func (m *TodoModule) updateTodo(ctx context.Context, req UpdateTodoRequest, _ *mono.Msg) (TodoResponse, error) {
	patch, err := domain.Patch{Title: req.Title, Completed: req.Completed}.Normalize()
	if err != nil {
		return errorResponse(err)
	}

	updated, err := m.repo.Update(ctx, req.ID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return errorResponse(notFound(req.ID))
		}
		return TodoResponse{}, err
	}

	var changed []string
	if patch.Title != nil {
		changed = append(changed, "title")
	}
	if patch.Completed != nil {
		changed = append(changed, "completed")
	}

	m.logger.Info("Todo updated", "id", updated.ID, "changed", changed)
	m.publish("TodoUpdated", updated.ID, func() error {
		return events.TodoUpdatedV1.Publish(m.eventBus, events.TodoUpdatedEvent{
			TodoID:    updated.ID,
			Title:     updated.Title,
			Completed: updated.Completed,
			Changed:   changed,
			UpdatedAt: updated.UpdatedAt,
		}, nil)
	})

	return TodoResponse{Todo: updated}, nil
}

// deleteTodo handles the delete service request.
func (m *TodoModule) deleteTodo(ctx context.Context, req DeleteTodoRequest, _ *mono.Msg) (DeleteTodoResponse, error) {
	if err := m.repo.Delete(ctx, req.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			err = notFound(req.ID)
			return DeleteTodoResponse{ErrorCode: domain.ErrorCode(err), Error: err.Error()}, nil
		}
		return DeleteTodoResponse{}, err
	}

	m.logger.Info("Todo deleted", "id", req.ID)
	m.publish("TodoDeleted", req.ID, func() error {
		return events.TodoDeletedV1.Publish(m.eventBus, events.TodoDeletedEvent{
			TodoID:    req.ID,
			DeletedAt: time.Now(),
		}, nil)
	})

	return DeleteTodoResponse{Deleted: true}, nil
}

// deleteCompleted handles the delete-completed service request.
func (m *TodoModule) deleteCompleted(ctx context.Context, _ ClearTodosRequest, _ *mono.Msg) (ClearTodosResponse, error) {
	n, err := m.repo.DeleteCompleted(ctx)
	if err != nil {
		return ClearTodosResponse{}, err
	}
	m.cleared(events.ClearScopeCompleted, n)
	return ClearTodosResponse{Count: n}, nil
}

// deleteAll handles the delete-all service request.
func (m *TodoModule) deleteAll(ctx context.Context, _ ClearTodosRequest, _ *mono.Msg) (ClearTodosResponse, error) {
	n, err := m.repo.DeleteAll(ctx)
	if err != nil {
		return ClearTodosResponse{}, err
	}
	m.cleared(events.ClearScopeAll, n)
	return ClearTodosResponse{Count: n}, nil
}

// ping handles the ping service request.
func (m *TodoModule) ping(ctx context.Context, _ PingRequest, _ *mono.Msg) (PingResponse, error) {
	if err := m.repo.Ping(ctx); err != nil {
		return PingResponse{Driver: m.repo.Driver(), Message: err.Error()}, nil
	}
	return PingResponse{Healthy: true, Driver: m.repo.Driver(), Message: "store reachable"}, nil
}

func (m *TodoModule) cleared(scope string, n int64) {
	m.logger.Info("Todos cleared", "scope", scope, "count", n)
	m.publish("TodosCleared", 0, func() error {
		return events.TodosClearedV1.Publish(m.eventBus, events.TodosClearedEvent{
			Scope:     scope,
			Count:     n,
			ClearedAt: time.Now(),
		}, nil)
	})
}

// publish emits an event if a bus is attached. Failures are logged, never returned.
func (m *TodoModule) publish(name string, id uint, emit func() error) {
	if m.eventBus == nil {
		return
	}
	if err := emit(); err != nil {
		m.logger.Warn("Failed to publish event", "event", name, "id", id, "error", err)
	}
}

func notFound(id uint) error {
	return domain.ErrorFromCode(domain.CodeNotFound, fmt.Sprintf("todo %d not found", id))
}

func errorResponse(err error) (TodoResponse, error) {
	return TodoResponse{ErrorCode: domain.ErrorCode(err), Error: err.Error()}, nil
}
