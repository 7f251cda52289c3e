package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	domain "github.com/example/todo-tracker/domain/todo"
	"github.com/example/todo-tracker/modules/activity"
	"github.com/example/todo-tracker/modules/todo"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any)         {}
func (m *mockLogger) Info(_ string, _ ...any)          {}
func (m *mockLogger) Warn(_ string, _ ...any)          {}
func (m *mockLogger) Error(_ string, _ ...any)         {}
func (m *mockLogger) With(_ ...any) types.Logger       { return m }
func (m *mockLogger) WithModule(_ string) types.Logger { return m }
func (m *mockLogger) WithError(_ error) types.Logger   { return m }

// mockTodoPort implements todo.TodoPort for testing.
type mockTodoPort struct {
	listFunc            func(ctx context.Context, status domain.Status) ([]domain.Todo, error)
	createFunc          func(ctx context.Context, req *todo.CreateTodoRequest) (*domain.Todo, error)
	updateFunc          func(ctx context.Context, id uint, patch domain.Patch) (*domain.Todo, error)
	deleteFunc          func(ctx context.Context, id uint) error
	deleteCompletedFunc func(ctx context.Context) (int64, error)
	deleteAllFunc       func(ctx context.Context) (int64, error)
	pingFunc            func(ctx context.Context) (*todo.PingResponse, error)
}

func (m *mockTodoPort) ListTodos(ctx context.Context, status domain.Status) ([]domain.Todo, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, status)
	}
	return []domain.Todo{}, nil
}

func (m *mockTodoPort) CreateTodo(ctx context.Context, req *todo.CreateTodoRequest) (*domain.Todo, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTodoPort) UpdateTodo(ctx context.Context, id uint, patch domain.Patch) (*domain.Todo, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, patch)
	}
	return nil, errors.New("not implemented")
}

func (m *mockTodoPort) DeleteTodo(ctx context.Context, id uint) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not implemented")
}

func (m *mockTodoPort) DeleteCompleted(ctx context.Context) (int64, error) {
	if m.deleteCompletedFunc != nil {
		return m.deleteCompletedFunc(ctx)
	}
	return 0, errors.New("not implemented")
}

func (m *mockTodoPort) DeleteAll(ctx context.Context) (int64, error) {
	if m.deleteAllFunc != nil {
		return m.deleteAllFunc(ctx)
	}
	return 0, errors.New("not implemented")
}

func (m *mockTodoPort) Ping(ctx context.Context) (*todo.PingResponse, error) {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return &todo.PingResponse{Healthy: true, Driver: "sqlite"}, nil
}

// mockActivityPort implements activity.ActivityPort for testing.
type mockActivityPort struct {
	recentFunc func(ctx context.Context, limit int) (*activity.RecentResponse, error)
}

func (m *mockActivityPort) Recent(ctx context.Context, limit int) (*activity.RecentResponse, error) {
	if m.recentFunc != nil {
		return m.recentFunc(ctx, limit)
	}
	return &activity.RecentResponse{Entries: []activity.Entry{}}, nil
}

func setupTestApp(port *mockTodoPort, act *mockActivityPort) *fiber.App {
	if act == nil {
		act = &mockActivityPort{}
	}
	m := NewModule(":0", "*", &mockLogger{})
	m.todoPort = port
	m.activityPort = act
	return m.newApp()
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read body: %v", err)
	}
	return resp, data
}

func sampleTodo(id uint, title string, completed bool) domain.Todo {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return domain.Todo{ID: id, Title: title, Completed: completed, CreatedAt: now, UpdatedAt: now}
}

func TestRootAndHealth(t *testing.T) {
	app := setupTestApp(&mockTodoPort{}, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("GET / status = %d", resp.StatusCode)
	}
	var info InfoResponse
	if err := json.Unmarshal(body, &info); err != nil || info.Version != Version {
		t.Errorf("GET / body = %s", body)
	}

	resp, body = doRequest(t, app, http.MethodGet, "/health", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("GET /health status = %d", resp.StatusCode)
	}
	var health HealthResponse
	if err := json.Unmarshal(body, &health); err != nil || health.Status != "healthy" || health.Message == "" {
		t.Errorf("GET /health body = %s", body)
	}
}

func TestHealth_Unhealthy(t *testing.T) {
	tests := []struct {
		name string
		ping func(ctx context.Context) (*todo.PingResponse, error)
	}{
		{"ping error", func(context.Context) (*todo.PingResponse, error) { return nil, errors.New("timeout") }},
		{"store down", func(context.Context) (*todo.PingResponse, error) {
			return &todo.PingResponse{Healthy: false, Message: "connection refused"}, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(&mockTodoPort{pingFunc: tt.ping}, nil)
			resp, body := doRequest(t, app, http.MethodGet, "/health", "")
			if resp.StatusCode != fiber.StatusServiceUnavailable {
				t.Errorf("status = %d, want 503", resp.StatusCode)
			}
			if !strings.Contains(string(body), "unhealthy") {
				t.Errorf("body = %s, want unhealthy status", body)
			}
		})
	}
}

func TestListTodos(t *testing.T) {
	tests := []struct {
		query string
		want  domain.Status
	}{
		{"", domain.StatusAll},
		{"?status=active", domain.StatusActive},
		{"?status=completed", domain.StatusCompleted},
		{"?status=bogus", domain.StatusAll},
		{"?status=Active", domain.StatusAll},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got domain.Status
			app := setupTestApp(&mockTodoPort{
				listFunc: func(_ context.Context, status domain.Status) ([]domain.Todo, error) {
					got = status
					return []domain.Todo{sampleTodo(2, "b", false), sampleTodo(1, "a", true)}, nil
				},
			}, nil)

			resp, body := doRequest(t, app, http.MethodGet, "/api/v1/todos"+tt.query, "")
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			if got != tt.want {
				t.Errorf("status filter = %q, want %q", got, tt.want)
			}

			var todos []domain.Todo
			if err := json.Unmarshal(body, &todos); err != nil {
				t.Fatalf("body is not a todo array: %s", body)
			}
			if len(todos) != 2 || todos[0].ID != 2 {
				t.Errorf("todos = %+v", todos)
			}
		})
	}
}

func TestListTodos_EmptyIsArray(t *testing.T) {
	app := setupTestApp(&mockTodoPort{}, nil)

	_, body := doRequest(t, app, http.MethodGet, "/api/v1/todos", "")
	if strings.TrimSpace(string(body)) != "[]" {
		t.Errorf("body = %s, want []", body)
	}
}

func TestCreateTodo(t *testing.T) {
	port := &mockTodoPort{
		createFunc: func(_ context.Context, req *todo.CreateTodoRequest) (*domain.Todo, error) {
			if req.Title == nil {
				return nil, domain.ValidationError("title is required")
			}
			created := sampleTodo(7, *req.Title, req.Completed)
			return &created, nil
		},
	}
	app := setupTestApp(port, nil)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"valid", `{"title":"Buy milk"}`, fiber.StatusCreated, ""},
		{"completed", `{"title":"Done","completed":true}`, fiber.StatusCreated, ""},
		{"missing title", `{}`, fiber.StatusBadRequest, "validation_error"},
		{"malformed", `{"title":`, fiber.StatusBadRequest, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, http.MethodPost, "/api/v1/todos", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
			if tt.wantError != "" {
				var errResp ErrorResponse
				if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error != tt.wantError {
					t.Errorf("error body = %s, want error %q", body, tt.wantError)
				}
				return
			}
			var created domain.Todo
			if err := json.Unmarshal(body, &created); err != nil || created.ID != 7 {
				t.Errorf("created body = %s", body)
			}
		})
	}
}

func TestUpdateTodo(t *testing.T) {
	port := &mockTodoPort{
		updateFunc: func(_ context.Context, id uint, patch domain.Patch) (*domain.Todo, error) {
			if patch.IsEmpty() {
				return nil, domain.ErrNoFields
			}
			if id != 1 {
				return nil, domain.ErrNotFound
			}
			updated := sampleTodo(1, "a", patch.Completed != nil && *patch.Completed)
			return &updated, nil
		},
	}
	app := setupTestApp(port, nil)

	tests := []struct {
		name       string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"toggle", "/api/v1/todos/1", `{"completed":true}`, fiber.StatusOK, ""},
		{"no fields", "/api/v1/todos/1", `{}`, fiber.StatusBadRequest, "no_fields"},
		{"not found", "/api/v1/todos/42", `{"completed":true}`, fiber.StatusNotFound, "not_found"},
		{"bad id", "/api/v1/todos/abc", `{"completed":true}`, fiber.StatusBadRequest, "validation_error"},
		{"negative id", "/api/v1/todos/-1", `{"completed":true}`, fiber.StatusBadRequest, "validation_error"},
		{"wrong type", "/api/v1/todos/1", `{"completed":"yes"}`, fiber.StatusBadRequest, "invalid_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, body := doRequest(t, app, http.MethodPut, tt.path, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", resp.StatusCode, tt.wantStatus, body)
			}
			if tt.wantError == "" {
				return
			}
			var errResp ErrorResponse
			if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error != tt.wantError {
				t.Errorf("error body = %s, want error %q", body, tt.wantError)
			}
		})
	}
}

func TestDeleteTodo(t *testing.T) {
	port := &mockTodoPort{
		deleteFunc: func(_ context.Context, id uint) error {
			if id != 3 {
				return domain.ErrNotFound
			}
			return nil
		},
	}
	app := setupTestApp(port, nil)

	resp, body := doRequest(t, app, http.MethodDelete, "/api/v1/todos/3", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d (body %s)", resp.StatusCode, body)
	}
	var msg MessageResponse
	if err := json.Unmarshal(body, &msg); err != nil || msg.Message != "Todo deleted successfully" {
		t.Errorf("body = %s", body)
	}

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/v1/todos/4", "")
	if resp.StatusCode != fiber.StatusNotFound {
		t.Errorf("missing todo status = %d, want 404", resp.StatusCode)
	}
}

func TestBulkDeletes(t *testing.T) {
	port := &mockTodoPort{
		deleteFunc: func(_ context.Context, id uint) error {
			t.Errorf("bulk route dispatched to single delete with id %d", id)
			return nil
		},
		deleteCompletedFunc: func(context.Context) (int64, error) { return 3, nil },
		deleteAllFunc:       func(context.Context) (int64, error) { return 0, nil },
	}
	app := setupTestApp(port, nil)

	tests := []struct {
		path string
		want string
	}{
		{"/api/v1/todos/completed", "Deleted 3 completed todos"},
		{"/api/v1/todos/all", "Cleared 0 todos"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, body := doRequest(t, app, http.MethodDelete, tt.path, "")
			if resp.StatusCode != fiber.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode)
			}
			var msg MessageResponse
			if err := json.Unmarshal(body, &msg); err != nil || msg.Message != tt.want {
				t.Errorf("message = %s, want %q", body, tt.want)
			}
		})
	}
}

func TestInternalErrorIs500(t *testing.T) {
	app := setupTestApp(&mockTodoPort{
		listFunc: func(context.Context, domain.Status) ([]domain.Todo, error) {
			return nil, errors.New("disk on fire")
		},
	}, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/todos", "")
	if resp.StatusCode != fiber.StatusInternalServerError {
		t.Errorf("status = %d, want 500", resp.StatusCode)
	}
	if !strings.Contains(string(body), "internal_error") {
		t.Errorf("body = %s", body)
	}
}

func TestListActivity(t *testing.T) {
	var gotLimit int
	act := &mockActivityPort{
		recentFunc: func(_ context.Context, limit int) (*activity.RecentResponse, error) {
			gotLimit = limit
			return &activity.RecentResponse{
				Entries: []activity.Entry{{ID: "e1", Type: activity.TypeCreated, TodoID: 1}},
				Total:   1,
			}, nil
		},
	}
	app := setupTestApp(&mockTodoPort{}, act)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/activity?limit=5", "")
	if resp.StatusCode != fiber.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if gotLimit != 5 {
		t.Errorf("limit = %d, want 5", gotLimit)
	}
	var recent activity.RecentResponse
	if err := json.Unmarshal(body, &recent); err != nil || len(recent.Entries) != 1 {
		t.Errorf("body = %s", body)
	}

	doRequest(t, app, http.MethodGet, "/api/v1/activity", "")
	if gotLimit != activity.DefaultLimit {
		t.Errorf("default limit = %d, want %d", gotLimit, activity.DefaultLimit)
	}
}

func TestCORSPreflight(t *testing.T) {
	app := setupTestApp(&mockTodoPort{}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/todos/1", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPut)

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("preflight status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
	body, _ := io.ReadAll(resp.Body)
	if len(body) != 0 {
		t.Errorf("preflight body = %q, want empty", body)
	}
}

func TestRequestIDHeader(t *testing.T) {
	app := setupTestApp(&mockTodoPort{}, nil)

	resp, _ := doRequest(t, app, http.MethodGet, "/health", "")
	if resp.Header.Get(fiber.HeaderXRequestID) == "" {
		t.Error("expected X-Request-ID header")
	}
}
