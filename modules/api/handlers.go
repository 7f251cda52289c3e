package api

import (
	"errors"
	"fmt"
	"strconv"

	domain "github.com/example/todo-tracker/domain/todo"
	"github.com/example/todo-tracker/modules/activity"
	"github.com/example/todo-tracker/modules/todo"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/", m.rootHandler)
	app.Get("/health", m.healthHandler)

	api := app.Group("/api/v1")

	todos := api.Group("/todos")
	todos.Get("/", m.listTodos)
	todos.Post("/", m.createTodo)
	// Bulk routes before /:id so they are not parsed as ids.
	todos.Delete("/completed", m.deleteCompleted)
	todos.Delete("/all", m.deleteAll)
	todos.Put("/:id", m.updateTodo)
	todos.Delete("/:id", m.deleteTodo)

	api.Get("/activity", m.listActivity)
}

// rootHandler handles GET /.
func (m *APIModule) rootHandler(c *fiber.Ctx) error {
	return c.JSON(InfoResponse{
		Message: "Todo Tracker API",
		Version: Version,
		Health:  "/health",
	})
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	ping, err := m.todoPort.Ping(c.UserContext())
	if err != nil {
		m.logger.Warn("Store ping failed", "error", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Message: "store unreachable",
		})
	}
	if !ping.Healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Message: ping.Message,
		})
	}
	return c.JSON(HealthResponse{
		Status:  "healthy",
		Message: "Service is running",
	})
}

// listTodos handles GET /api/v1/todos.
func (m *APIModule) listTodos(c *fiber.Ctx) error {
	status := domain.ParseStatus(c.Query("status"))

	todos, err := m.todoPort.ListTodos(c.UserContext(), status)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(todos)
}

// createTodo handles POST /api/v1/todos.
func (m *APIModule) createTodo(c *fiber.Ctx) error {
	var req CreateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	created, err := m.todoPort.CreateTodo(c.UserContext(), &todo.CreateTodoRequest{
		Title:     req.Title,
		Completed: req.Completed != nil && *req.Completed,
	})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// updateTodo handles PUT /api/v1/todos/:id.
func (m *APIModule) updateTodo(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return m.writeError(c, err)
	}

	var req UpdateTodoRequest
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c)
	}

	updated, err := m.todoPort.UpdateTodo(c.UserContext(), id, domain.Patch{
		Title:     req.Title,
		Completed: req.Completed,
	})
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(updated)
}

// deleteTodo handles DELETE /api/v1/todos/:id.
func (m *APIModule) deleteTodo(c *fiber.Ctx) error {
	id, err := parseID(c)
	if err != nil {
		return m.writeError(c, err)
	}

	if err := m.todoPort.DeleteTodo(c.UserContext(), id); err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: "Todo deleted successfully"})
}

// deleteCompleted handles DELETE /api/v1/todos/completed.
func (m *APIModule) deleteCompleted(c *fiber.Ctx) error {
	n, err := m.todoPort.DeleteCompleted(c.UserContext())
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: fmt.Sprintf("Deleted %d completed todos", n)})
}

// deleteAll handles DELETE /api/v1/todos/all.
func (m *APIModule) deleteAll(c *fiber.Ctx) error {
	n, err := m.todoPort.DeleteAll(c.UserContext())
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(MessageResponse{Message: fmt.Sprintf("Cleared %d todos", n)})
}

// listActivity handles GET /api/v1/activity.
func (m *APIModule) listActivity(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", activity.DefaultLimit)

	resp, err := m.activityPort.Recent(c.UserContext(), limit)
	if err != nil {
		return m.writeError(c, err)
	}
	return c.JSON(resp)
}

// writeError maps domain errors to status codes.
func (m *APIModule) writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrNoFields):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "no_fields",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	default:
		m.logger.Error("Request failed", "method", c.Method(), "path", c.Path(), "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: err.Error(),
		})
	}
}

func invalidBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request body",
	})
}

func parseID(c *fiber.Ctx) (uint, error) {
	raw := c.Params("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, domain.ValidationError("invalid todo id %q", raw)
	}
	return uint(id), nil
}
