package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TodoCreatedEvent is emitted when a todo is created.
type TodoCreatedEvent struct {
	TodoID    uint      `json:"todo_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// TodoCreatedV1 is the typed event definition for todo creation.
// Subject: events.todo.v1.todo-created
var TodoCreatedV1 = helper.EventDefinition[TodoCreatedEvent](
	"todo", "TodoCreated", "v1",
)

// TodoUpdatedEvent is emitted after a partial update. Changed lists the
// fields the update carried.
type TodoUpdatedEvent struct {
	TodoID    uint      `json:"todo_id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	Changed   []string  `json:"changed"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TodoUpdatedV1 is the typed event definition for todo updates.
// Subject: events.todo.v1.todo-updated
var TodoUpdatedV1 = helper.EventDefinition[TodoUpdatedEvent](
	"todo", "TodoUpdated", "v1",
)

// TodoDeletedEvent is emitted when a single todo is deleted.
type TodoDeletedEvent struct {
	TodoID    uint      `json:"todo_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TodoDeletedV1 is the typed event definition for todo deletion.
// Subject: events.todo.v1.todo-deleted
var TodoDeletedV1 = helper.EventDefinition[TodoDeletedEvent](
	"todo", "TodoDeleted", "v1",
)

// Clear scopes.
const (
	ClearScopeCompleted = "completed"
	ClearScopeAll       = "all"
)

// TodosClearedEvent is emitted after a bulk delete.
type TodosClearedEvent struct {
	Scope     string    `json:"scope"`
	Count     int64     `json:"count"`
	ClearedAt time.Time `json:"cleared_at"`
}

// TodosClearedV1 is the typed event definition for bulk deletes.
// Subject: events.todo.v1.todos-cleared
var TodosClearedV1 = helper.EventDefinition[TodosClearedEvent](
	"todo", "TodosCleared", "v1",
)
