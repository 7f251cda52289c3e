// Package client is the client-side state controller for the todo API: an
// HTTP client for the REST surface plus an observable state container that
// applies the busy-indicator, filtering and notification rules of the UI.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	domain "github.com/example/todo-tracker/domain/todo"
)

// ErrTransport is returned for network failures, timeouts and unclassified
// non-2xx responses.
var ErrTransport = errors.New("transport error")

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return e.Message
}

// Unwrap maps the server's error code onto the domain sentinels.
func (e *APIError) Unwrap() error {
	switch e.Code {
	case "validation_error", "invalid_request":
		return domain.ErrValidation
	case "no_fields":
		return domain.ErrNoFields
	case "not_found":
		return domain.ErrNotFound
	default:
		return ErrTransport
	}
}

// Backend is the set of server calls the controller makes.
type Backend interface {
	List(ctx context.Context, status domain.Status) ([]domain.Todo, error)
	Create(ctx context.Context, title string) (*domain.Todo, error)
	Update(ctx context.Context, id uint, patch domain.Patch) (*domain.Todo, error)
	Delete(ctx context.Context, id uint) (string, error)
	DeleteCompleted(ctx context.Context) (string, error)
	DeleteAll(ctx context.Context) (string, error)
	Health(ctx context.Context) error
}

// API is an HTTP Backend.
type API struct {
	baseURL string
	http    *http.Client
}

var _ Backend = (*API)(nil)

// DefaultTimeout bounds every request made with a nil http.Client.
const DefaultTimeout = 10 * time.Second

// NewAPI creates a client for the server at baseURL (scheme and host, without
// the /api/v1 prefix). A nil httpClient gets DefaultTimeout.
func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &API{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

type messageBody struct {
	Message string `json:"message"`
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// List fetches todos matching status.
func (a *API) List(ctx context.Context, status domain.Status) ([]domain.Todo, error) {
	path := "/api/v1/todos"
	if status != domain.StatusAll && status != "" {
		path += "?status=" + string(status)
	}
	var todos []domain.Todo
	if err := a.do(ctx, http.MethodGet, path, nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = make([]domain.Todo, 0)
	}
	return todos, nil
}

// Create creates a todo with title.
func (a *API) Create(ctx context.Context, title string) (*domain.Todo, error) {
	body := map[string]any{"title": title, "completed": false}
	var created domain.Todo
	if err := a.do(ctx, http.MethodPost, "/api/v1/todos", body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update applies patch to the todo with id.
func (a *API) Update(ctx context.Context, id uint, patch domain.Patch) (*domain.Todo, error) {
	var updated domain.Todo
	if err := a.do(ctx, http.MethodPut, todoPath(id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the todo with id and returns the server message.
func (a *API) Delete(ctx context.Context, id uint) (string, error) {
	var msg messageBody
	if err := a.do(ctx, http.MethodDelete, todoPath(id), nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// DeleteCompleted removes completed todos and returns the server message.
func (a *API) DeleteCompleted(ctx context.Context) (string, error) {
	var msg messageBody
	if err := a.do(ctx, http.MethodDelete, "/api/v1/todos/completed", nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// DeleteAll removes every todo and returns the server message.
func (a *API) DeleteAll(ctx context.Context) (string, error) {
	var msg messageBody
	if err := a.do(ctx, http.MethodDelete, "/api/v1/todos/all", nil, &msg); err != nil {
		return "", err
	}
	return msg.Message, nil
}

// Health probes the server. Any failure or non-200 status is an error.
func (a *API) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health check returned %d", ErrTransport, resp.StatusCode)
	}
	return nil
}

func (a *API) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode}
		var eb errorBody
		if json.Unmarshal(data, &eb) == nil {
			apiErr.Code = eb.Error
			apiErr.Message = eb.Message
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrTransport, err)
	}
	return nil
}

func todoPath(id uint) string {
	return "/api/v1/todos/" + strconv.FormatUint(uint64(id), 10)
}
