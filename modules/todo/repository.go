package todo

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/todo-tracker/domain/todo"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store is a repository the module can health-check and close.
type Store interface {
	domain.Repository
	Ping(ctx context.Context) error
	Close() error
	Driver() string
}

// GormRepository stores todos in SQLite through GORM.
type GormRepository struct {
	db *gorm.DB
}

var _ Store = (*GormRepository)(nil)

// OpenSQLite opens the database at path and migrates the todos table.
func OpenSQLite(path string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&domain.Todo{}); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return db, nil
}

// NewGormRepository creates a repository on an open GORM connection.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// Driver returns the backend name.
func (r *GormRepository) Driver() string {
	return "sqlite"
}

// List returns todos matching status, newest first.
func (r *GormRepository) List(ctx context.Context, status domain.Status) ([]domain.Todo, error) {
	query := r.db.WithContext(ctx).Order("created_at DESC").Order("id DESC")
	switch status {
	case domain.StatusActive:
		query = query.Where("completed = ?", false)
	case domain.StatusCompleted:
		query = query.Where("completed = ?", true)
	}

	todos := make([]domain.Todo, 0)
	if err := query.Find(&todos).Error; err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, nil
}

// Create inserts t and fills in its ID and timestamps.
func (r *GormRepository) Create(ctx context.Context, t *domain.Todo) error {
	t.ID = 0
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create todo: %w", err)
	}
	return nil
}

// Update applies patch to the todo with id and returns the stored row.
func (r *GormRepository) Update(ctx context.Context, id uint, patch domain.Patch) (*domain.Todo, error) {
	updates := map[string]any{"updated_at": time.Now()}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}

	var updated domain.Todo
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&domain.Todo{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return fmt.Errorf("failed to update todo: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		if err := tx.First(&updated, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return fmt.Errorf("failed to reload todo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the todo with id.
func (r *GormRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Todo{}, id)
	if err := result.Error; err != nil {
		return fmt.Errorf("failed to delete todo: %w", err)
	}
	if result.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// DeleteCompleted removes every completed todo in one statement.
func (r *GormRepository) DeleteCompleted(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("completed = ?", true).Delete(&domain.Todo{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to delete completed todos: %w", err)
	}
	return result.RowsAffected, nil
}

// DeleteAll removes every todo in one statement.
func (r *GormRepository) DeleteAll(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&domain.Todo{})
	if err := result.Error; err != nil {
		return 0, fmt.Errorf("failed to delete all todos: %w", err)
	}
	return result.RowsAffected, nil
}

// Ping checks the database connection.
func (r *GormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection.
func (r *GormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
