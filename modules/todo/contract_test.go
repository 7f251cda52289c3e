package todo

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/todo-tracker/domain/todo"
)

func ptr[T any](v T) *T { return &v }

// runRepositoryContract exercises behaviour every backend must share.
// newStore must return an empty store.
func runRepositoryContract(t *testing.T, newStore func(t *testing.T) Store) {
	t.Run("CreateAssignsIDAndTimestamps", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		todo := &domain.Todo{Title: "Buy milk"}
		if err := repo.Create(ctx, todo); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if todo.ID == 0 {
			t.Error("expected ID to be assigned")
		}
		if todo.Completed {
			t.Error("expected completed to default to false")
		}
		if todo.CreatedAt.IsZero() || todo.UpdatedAt.IsZero() {
			t.Error("expected timestamps to be set")
		}
	})

	t.Run("ListNewestFirst", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		var ids []uint
		for _, title := range []string{"first", "second", "third"} {
			todo := &domain.Todo{Title: title}
			if err := repo.Create(ctx, todo); err != nil {
				t.Fatalf("Create(%q) error = %v", title, err)
			}
			ids = append(ids, todo.ID)
		}

		todos, err := repo.List(ctx, domain.StatusAll)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(todos) != 3 {
			t.Fatalf("expected 3 todos, got %d", len(todos))
		}
		for i, want := range []uint{ids[2], ids[1], ids[0]} {
			if todos[i].ID != want {
				t.Errorf("todos[%d].ID = %d, want %d", i, todos[i].ID, want)
			}
		}
	})

	t.Run("ListFilters", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		for i, completed := range []bool{true, false, true, false, true} {
			todo := &domain.Todo{Title: "task", Completed: completed}
			if err := repo.Create(ctx, todo); err != nil {
				t.Fatalf("Create(%d) error = %v", i, err)
			}
		}

		tests := []struct {
			status domain.Status
			want   int
		}{
			{domain.StatusAll, 5},
			{domain.StatusActive, 2},
			{domain.StatusCompleted, 3},
		}
		for _, tt := range tests {
			todos, err := repo.List(ctx, tt.status)
			if err != nil {
				t.Fatalf("List(%s) error = %v", tt.status, err)
			}
			if len(todos) != tt.want {
				t.Errorf("List(%s) returned %d todos, want %d", tt.status, len(todos), tt.want)
			}
			for _, todo := range todos {
				if !tt.status.Matches(todo) {
					t.Errorf("List(%s) returned non-matching todo %+v", tt.status, todo)
				}
			}
		}
	})

	t.Run("ListEmptyIsNotNil", func(t *testing.T) {
		repo := newStore(t)
		todos, err := repo.List(context.Background(), domain.StatusAll)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if todos == nil {
			t.Error("expected empty slice, got nil")
		}
	})

	t.Run("UpdatePartial", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		todo := &domain.Todo{Title: "Original"}
		if err := repo.Create(ctx, todo); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		updated, err := repo.Update(ctx, todo.ID, domain.Patch{Title: ptr("Renamed")})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Title != "Renamed" {
			t.Errorf("expected title %q, got %q", "Renamed", updated.Title)
		}
		if updated.Completed {
			t.Error("completed changed although the patch did not set it")
		}
		if updated.ID != todo.ID {
			t.Errorf("ID changed from %d to %d", todo.ID, updated.ID)
		}
	})

	t.Run("ToggleTwiceRestoresAndRefreshesUpdatedAt", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		todo := &domain.Todo{Title: "Toggle me"}
		if err := repo.Create(ctx, todo); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		time.Sleep(5 * time.Millisecond)
		first, err := repo.Update(ctx, todo.ID, domain.Patch{Completed: ptr(true)})
		if err != nil {
			t.Fatalf("first toggle error = %v", err)
		}
		time.Sleep(5 * time.Millisecond)
		second, err := repo.Update(ctx, todo.ID, domain.Patch{Completed: ptr(false)})
		if err != nil {
			t.Fatalf("second toggle error = %v", err)
		}

		if !first.Completed || second.Completed {
			t.Errorf("toggle sequence = %v, %v; want true, false", first.Completed, second.Completed)
		}
		if !first.UpdatedAt.After(todo.UpdatedAt) {
			t.Errorf("first toggle did not advance updated_at: %v -> %v", todo.UpdatedAt, first.UpdatedAt)
		}
		if !second.UpdatedAt.After(first.UpdatedAt) {
			t.Errorf("second toggle did not advance updated_at: %v -> %v", first.UpdatedAt, second.UpdatedAt)
		}
		if !second.CreatedAt.Equal(first.CreatedAt) {
			t.Error("created_at changed on update")
		}
	})

	t.Run("UpdateNotFound", func(t *testing.T) {
		repo := newStore(t)
		_, err := repo.Update(context.Background(), 9999, domain.Patch{Completed: ptr(true)})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("DeleteNotFoundKeepsRows", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		if err := repo.Create(ctx, &domain.Todo{Title: "keep"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := repo.Delete(ctx, 9999); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}

		todos, err := repo.List(ctx, domain.StatusAll)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(todos) != 1 {
			t.Errorf("expected 1 todo after failed delete, got %d", len(todos))
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		todo := &domain.Todo{Title: "remove"}
		if err := repo.Create(ctx, todo); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if err := repo.Delete(ctx, todo.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if err := repo.Delete(ctx, todo.ID); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("second Delete() = %v, want ErrNotFound", err)
		}
	})

	t.Run("DeleteCompleted", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		for _, completed := range []bool{true, true, true, false, false} {
			if err := repo.Create(ctx, &domain.Todo{Title: "task", Completed: completed}); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		}

		n, err := repo.DeleteCompleted(ctx)
		if err != nil {
			t.Fatalf("DeleteCompleted() error = %v", err)
		}
		if n != 3 {
			t.Errorf("DeleteCompleted() = %d, want 3", n)
		}

		todos, err := repo.List(ctx, domain.StatusAll)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(todos) != 2 {
			t.Errorf("expected 2 remaining todos, got %d", len(todos))
		}
		for _, todo := range todos {
			if todo.Completed {
				t.Errorf("completed todo %d survived DeleteCompleted", todo.ID)
			}
		}

		n, err = repo.DeleteCompleted(ctx)
		if err != nil || n != 0 {
			t.Errorf("second DeleteCompleted() = %d, %v; want 0, nil", n, err)
		}
	})

	t.Run("DeleteAll", func(t *testing.T) {
		repo := newStore(t)
		ctx := context.Background()

		for i := 0; i < 4; i++ {
			if err := repo.Create(ctx, &domain.Todo{Title: "task"}); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		}

		n, err := repo.DeleteAll(ctx)
		if err != nil {
			t.Fatalf("DeleteAll() error = %v", err)
		}
		if n != 4 {
			t.Errorf("DeleteAll() = %d, want 4", n)
		}

		todos, err := repo.List(ctx, domain.StatusAll)
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(todos) != 0 {
			t.Errorf("expected empty store, got %d todos", len(todos))
		}
	})

	t.Run("Ping", func(t *testing.T) {
		repo := newStore(t)
		if err := repo.Ping(context.Background()); err != nil {
			t.Errorf("Ping() error = %v", err)
		}
	})
}
