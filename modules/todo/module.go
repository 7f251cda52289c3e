package todo

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/todo-tracker/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// Service names. The framework prefixes them with "services.todo.".
const (
	ServiceList            = "list"
	ServiceCreate          = "create"
	ServiceUpdate          = "update"
	ServiceDelete          = "delete"
	ServiceDeleteCompleted = "delete-completed"
	ServiceDeleteAll       = "delete-all"
	ServicePing            = "ping"
)

// StoreConfig selects and configures the persistence backend.
type StoreConfig struct {
	Driver        string
	DBPath        string
	DBDebug       bool
	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string
}

// TodoModule is the task store: it owns persistence and emits lifecycle events.
type TodoModule struct {
	cfg      StoreConfig
	repo     Store
	logger   types.Logger
	eventBus mono.EventBus
}

var _ mono.Module = (*TodoModule)(nil)
var _ mono.ServiceProviderModule = (*TodoModule)(nil)
var _ mono.EventEmitterModule = (*TodoModule)(nil)
var _ mono.HealthCheckableModule = (*TodoModule)(nil)

// NewModule creates a TodoModule that opens its backend on Start.
func NewModule(cfg StoreConfig, logger types.Logger) *TodoModule {
	return &TodoModule{
		cfg:    cfg,
		logger: logger.WithModule("todo"),
	}
}

// NewModuleWithStore creates a TodoModule on an already open store.
func NewModuleWithStore(repo Store, logger types.Logger) *TodoModule {
	return &TodoModule{
		cfg:    StoreConfig{Driver: repo.Driver()},
		repo:   repo,
		logger: logger.WithModule("todo"),
	}
}

func (m *TodoModule) Name() string {
	return "todo"
}

func (m *TodoModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TodoModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TodoCreatedV1.ToBase(),
		events.TodoUpdatedV1.ToBase(),
		events.TodoDeletedV1.ToBase(),
		events.TodosClearedV1.ToBase(),
	}
}

func (m *TodoModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceList, json.Unmarshal, json.Marshal, m.listTodos,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceList, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreate, json.Unmarshal, json.Marshal, m.createTodo,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdate, json.Unmarshal, json.Marshal, m.updateTodo,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdate, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDelete, json.Unmarshal, json.Marshal, m.deleteTodo,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDelete, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteCompleted, json.Unmarshal, json.Marshal, m.deleteCompleted,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteCompleted, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteAll, json.Unmarshal, json.Marshal, m.deleteAll,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteAll, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServicePing, json.Unmarshal, json.Marshal, m.ping,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServicePing, err)
	}

	m.logger.Info("Registered services",
		"services", "list, create, update, delete, delete-completed, delete-all, ping")
	return nil
}

// Start opens the configured backend unless a store was injected.
func (m *TodoModule) Start(ctx context.Context) error {
	if m.repo == nil {
		repo, err := openStore(ctx, m.cfg)
		if err != nil {
			return err
		}
		m.repo = repo
	}
	if m.eventBus == nil {
		m.logger.Warn("eventBus not set, events will not be published")
	}
	m.logger.Info("Module started", "driver", m.repo.Driver())
	return nil
}

// Stop closes the backend.
func (m *TodoModule) Stop(_ context.Context) error {
	if m.repo == nil {
		return nil
	}
	if err := m.repo.Close(); err != nil {
		return fmt.Errorf("failed to close %s store: %w", m.repo.Driver(), err)
	}
	m.logger.Info("Module stopped")
	return nil
}

// Health pings the backend.
func (m *TodoModule) Health(ctx context.Context) mono.HealthStatus {
	if m.repo == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}
	if err := m.repo.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("store ping failed: %v", err),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: m.details(),
	}
}

func (m *TodoModule) details() map[string]any {
	d := map[string]any{"driver": m.repo.Driver()}
	switch m.cfg.Driver {
	case "sqlite":
		d["path"] = m.cfg.DBPath
	case "redis":
		d["addr"] = m.cfg.RedisAddr
		d["prefix"] = m.cfg.RedisPrefix
	}
	return d
}

func openStore(ctx context.Context, cfg StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "sqlite":
		db, err := OpenSQLite(cfg.DBPath, cfg.DBDebug)
		if err != nil {
			return nil, err
		}
		return NewGormRepository(db), nil
	case "postgres":
		pool, err := OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return NewPostgresRepository(pool), nil
	case "redis":
		client, err := OpenRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, err
		}
		return NewRedisRepository(client, cfg.RedisPrefix), nil
	default:
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}
