// Package activity keeps a bounded feed of task lifecycle events.
package activity

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/todo-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// ActivityModule consumes todo events and serves the recent ones.
type ActivityModule struct {
	feed   *Feed
	logger types.Logger
}

var (
	_ mono.Module                = (*ActivityModule)(nil)
	_ mono.EventConsumerModule   = (*ActivityModule)(nil)
	_ mono.ServiceProviderModule = (*ActivityModule)(nil)
)

// NewModule creates an ActivityModule retaining capacity entries.
func NewModule(capacity int, logger types.Logger) *ActivityModule {
	return &ActivityModule{
		feed:   NewFeed(capacity),
		logger: logger.WithModule("activity"),
	}
}

func (m *ActivityModule) Name() string {
	return "activity"
}

func (m *ActivityModule) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TodoCreatedV1, m.handleTodoCreated, m); err != nil {
		return fmt.Errorf("failed to register TodoCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TodoUpdatedV1, m.handleTodoUpdated, m); err != nil {
		return fmt.Errorf("failed to register TodoUpdated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TodoDeletedV1, m.handleTodoDeleted, m); err != nil {
		return fmt.Errorf("failed to register TodoDeleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TodosClearedV1, m.handleTodosCleared, m); err != nil {
		return fmt.Errorf("failed to register TodosCleared consumer: %w", err)
	}

	m.logger.Info("Registered event consumers",
		"events", []string{"TodoCreated.v1", "TodoUpdated.v1", "TodoDeleted.v1", "TodosCleared.v1"})
	return nil
}

func (m *ActivityModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "recent", json.Unmarshal, json.Marshal, m.recent,
	); err != nil {
		return fmt.Errorf("failed to register recent service: %w", err)
	}
	return nil
}

func (m *ActivityModule) handleTodoCreated(_ context.Context, event events.TodoCreatedEvent, _ *mono.Msg) error {
	m.record(TypeCreated, event.TodoID, fmt.Sprintf("Created %q", event.Title), event.CreatedAt)
	return nil
}

func (m *ActivityModule) handleTodoUpdated(_ context.Context, event events.TodoUpdatedEvent, _ *mono.Msg) error {
	for _, field := range event.Changed {
		switch field {
		case "completed":
			if event.Completed {
				m.record(TypeCompleted, event.TodoID, fmt.Sprintf("Completed %q", event.Title), event.UpdatedAt)
			} else {
				m.record(TypeReopened, event.TodoID, fmt.Sprintf("Reopened %q", event.Title), event.UpdatedAt)
			}
		case "title":
			m.record(TypeRenamed, event.TodoID, fmt.Sprintf("Renamed to %q", event.Title), event.UpdatedAt)
		}
	}
	return nil
}

func (m *ActivityModule) handleTodoDeleted(_ context.Context, event events.TodoDeletedEvent, _ *mono.Msg) error {
	m.record(TypeDeleted, event.TodoID, fmt.Sprintf("Deleted todo %d", event.TodoID), event.DeletedAt)
	return nil
}

func (m *ActivityModule) handleTodosCleared(_ context.Context, event events.TodosClearedEvent, _ *mono.Msg) error {
	var msg string
	if event.Scope == events.ClearScopeCompleted {
		msg = fmt.Sprintf("Cleared %d completed todos", event.Count)
	} else {
		msg = fmt.Sprintf("Cleared all %d todos", event.Count)
	}
	m.record(TypeCleared, 0, msg, event.ClearedAt)
	return nil
}

func (m *ActivityModule) recent(_ context.Context, req RecentRequest, _ *mono.Msg) (RecentResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	entries := m.feed.Recent(limit)
	return RecentResponse{Entries: entries, Total: m.feed.Len()}, nil
}

func (m *ActivityModule) record(entryType string, todoID uint, message string, at time.Time) {
	if at.IsZero() {
		at = time.Now()
	}
	m.feed.Add(Entry{
		ID:        uuid.NewString(),
		Type:      entryType,
		TodoID:    todoID,
		Message:   message,
		Timestamp: at,
	})
	m.logger.Debug("Recorded activity", "type", entryType, "todo_id", todoID)
}

// Recent returns up to limit entries, newest first.
func (m *ActivityModule) Recent(limit int) []Entry {
	return m.feed.Recent(limit)
}

func (m *ActivityModule) Start(_ context.Context) error {
	m.logger.Info("Module started - listening for todo events")
	return nil
}

func (m *ActivityModule) Stop(_ context.Context) error {
	m.logger.Info("Module stopped")
	return nil
}
