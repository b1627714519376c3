package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/task-board/modules/api"
	"github.com/example/task-board/modules/auth"
	"github.com/example/task-board/modules/broadcast"
	"github.com/example/task-board/modules/cache"
	"github.com/example/task-board/modules/task"
	"github.com/example/task-board/pkg/env"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	redisAddr := env.String("REDIS_ADDR", "")

	log.Println("=== Task Board ===")
	log.Printf("HTTP Port: %d", env.Int("PORT", 3000))
	if redisAddr != "" {
		log.Printf("Redis: %s", redisAddr)
	} else {
		log.Println("Redis: disabled (REDIS_ADDR not set)")
	}

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create mono application: %v", err)
	}
	logger := app.Logger()

	authModule := auth.NewModule(logger)
	taskModule := task.NewModule(logger)
	broadcastModule := broadcast.NewModule(logger)
	apiModule := api.NewModule(logger)

	// Wire up dependencies that are not request-reply services
	apiModule.SetHub(broadcastModule.GetHub())
	apiModule.AddHealthCheck(authModule.Name(), authModule)
	apiModule.AddHealthCheck(taskModule.Name(), taskModule)
	apiModule.AddHealthCheck(broadcastModule.Name(), broadcastModule)

	if redisAddr != "" {
		cacheModule := cache.NewModule(cache.Config{
			RedisAddr: redisAddr,
			Password:  env.String("REDIS_PASSWORD", ""),
			Prefix:    env.String("CACHE_PREFIX", cache.DefaultConfig().Prefix),
			TTL:       env.Duration("CACHE_TTL", cache.DefaultConfig().TTL),
		}, logger)
		taskModule.SetCache(cacheModule.Cache())
		apiModule.AddHealthCheck(cacheModule.Name(), cacheModule)

		if err := app.Register(cacheModule); err != nil {
			log.Fatalf("Failed to register cache module: %v", err)
		}
	}

	for _, module := range []mono.Module{authModule, taskModule, broadcastModule, apiModule} {
		if err := app.Register(module); err != nil {
			log.Fatalf("Failed to register %s module: %v", module.Name(), err)
		}
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start app: %v", err)
	}

	log.Println("=== Application Started ===")
	log.Println("Endpoints:")
	log.Println("  GET    /health                - Health check")
	log.Println("  POST   /api/v1/auth/register  - Register a user")
	log.Println("  POST   /api/v1/auth/login     - Log in")
	log.Println("  GET    /api/v1/users          - List users")
	log.Println("  GET    /api/v1/tasks          - List tasks (?status=&assignee=)")
	log.Println("  POST   /api/v1/tasks          - Create a task")
	log.Println("  GET    /api/v1/tasks/:id      - Get a task")
	log.Println("  PUT    /api/v1/tasks/:id      - Update a task")
	log.Println("  DELETE /api/v1/tasks/:id      - Delete a task")
	log.Println("  GET    /ws?token=<jwt>        - Board change notifications")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown")

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
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
