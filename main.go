package main

import (
	"context"
	"log"
	"os"

	"github.com/example/todo-tracker/config"
	"github.com/example/todo-tracker/modules/activity"
	"github.com/example/todo-tracker/modules/api"
	"github.com/example/todo-tracker/modules/todo"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== Todo Tracker ===")

	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Order: independent modules first, then modules with dependencies
	// - activity: event consumer (subscribes to todo events)
	// - todo: task store (emits events)
	// - api: driving adapter (depends on todo and activity)
	modules := []mono.Module{
		activity.NewModule(cfg.ActivityCapacity, logger),
		todo.NewModule(todo.StoreConfig{
			Driver:        cfg.StoreDriver,
			DBPath:        cfg.DBPath,
			DBDebug:       cfg.DBDebug,
			DatabaseURL:   cfg.DatabaseURL,
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
			RedisPrefix:   cfg.RedisPrefix,
		}, logger),
		api.NewModule(cfg.HTTPAddr, cfg.CORSAllowedOrigins, logger),
	}
	for _, m := range modules {
		if err := app.Register(m); err != nil {
			log.Fatalf("Failed to register %s module: %v", m.Name(), err)
		}
	}

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo(cfg)

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo(cfg *config.Config) {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Printf("Store: %s", cfg.StoreDriver)
	log.Printf("CORS origins: %s", cfg.CORSAllowedOrigins)
	log.Println("")
	log.Printf("REST API Endpoints (%s):", cfg.HTTPAddr)
	log.Println("  GET    /                          - Service info")
	log.Println("  GET    /health                    - Health check")
	log.Println("  GET    /api/v1/todos?status=      - List todos (all, active, completed)")
	log.Println("  POST   /api/v1/todos              - Create a todo")
	log.Println("  PUT    /api/v1/todos/:id          - Update title and/or completed")
	log.Println("  DELETE /api/v1/todos/:id          - Delete a todo")
	log.Println("  DELETE /api/v1/todos/completed    - Delete completed todos")
	log.Println("  DELETE /api/v1/todos/all          - Delete all todos")
	log.Println("  GET    /api/v1/activity?limit=    - Recent activity")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
