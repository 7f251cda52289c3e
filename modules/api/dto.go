package api

// CreateTodoRequest is the HTTP request for creating a todo.
type CreateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// UpdateTodoRequest is the HTTP request for a partial update.
type UpdateTodoRequest struct {
	Title     *string `json:"title"`
	Completed *bool   `json:"completed"`
}

// MessageResponse is the HTTP response for deletes.
type MessageResponse struct {
	Message string `json:"message"`
}

// InfoResponse is the HTTP response for the service root.
type InfoResponse struct {
	Message string `json:"message"`
	Version string `json:"version"`
	Health  string `json:"health"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
