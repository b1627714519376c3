package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-board/domain/task"
	"github.com/example/task-board/events"
	"github.com/example/task-board/modules/auth"
	"github.com/example/task-board/pkg/database"
	"github.com/example/task-board/pkg/env"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// TaskModule provides task management services (core domain).
type TaskModule struct {
	db       *gorm.DB
	service  *TaskService
	userPort auth.AuthPort
	eventBus mono.EventBus
	cache    ViewCache
	dbPath   string
	seed     bool
	logger   types.Logger
}

var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.DependentModule = (*TaskModule)(nil)
var _ mono.EventEmitterModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a new TaskModule.
func NewModule(logger types.Logger) *TaskModule {
	return &TaskModule{
		dbPath: env.String("TASK_DB_PATH", "tasks.db"),
		seed:   env.Bool("SEED_DEMO_DATA", true),
		logger: logger,
	}
}

func (m *TaskModule) Name() string {
	return "task"
}

func (m *TaskModule) Dependencies() []string {
	return []string{"auth"}
}

func (m *TaskModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "auth" {
		m.userPort = auth.NewAuthAdapter(container)
	}
}

func (m *TaskModule) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

func (m *TaskModule) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskUpdatedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// SetCache enables read-through caching of task views. It must be called
// before Start.
func (m *TaskModule) SetCache(c ViewCache) {
	m.cache = c
}

func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create-task", json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register create-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get-task", json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register get-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list-tasks", json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register list-tasks service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update-task", json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register update-task service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete-task", json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register delete-task service: %w", err)
	}

	m.logger.Info("Registered services", "services", "create-task, get-task, list-tasks, update-task, delete-task")
	return nil
}

func (m *TaskModule) Start(ctx context.Context) error {
	if m.userPort == nil {
		return fmt.Errorf("userPort dependency not set")
	}

	db, err := database.OpenSQLite(m.dbPath, &domain.Task{})
	if err != nil {
		return err
	}
	m.db = db

	var notifier Notifier
	if m.eventBus != nil {
		notifier = &busNotifier{bus: m.eventBus, logger: m.logger}
	} else {
		m.logger.Warn("EventBus not set, task events will not be published")
	}

	m.service = NewTaskService(NewTaskRepository(db), m.userPort, m.cache, notifier, m.logger)

	if m.seed {
		// demo data is optional; the board still works without it
		n, err := m.service.SeedDemoTasks(ctx)
		if err != nil {
			m.logger.Warn("Skipped demo task seeding", "error", err)
		} else if n > 0 {
			m.logger.Info("Seeded demo tasks", "count", n)
		}
	}

	m.logger.Info("Task module started", "database", m.dbPath, "cache", m.cache != nil)
	return nil
}

func (m *TaskModule) Stop(_ context.Context) error {
	if err := database.Close(m.db); err != nil {
		m.logger.Warn("Failed to close database", "error", err)
	}
	m.logger.Info("Task module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *TaskModule) Health(_ context.Context) mono.HealthStatus {
	if err := database.Ping(m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
			"cache":    m.cache != nil,
		},
	}
}

func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskView, error) {
	v, err := m.service.Create(ctx, req.Actor, req.Draft)
	if err != nil {
		return TaskView{}, err
	}
	return *v, nil
}

func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskView, error) {
	v, err := m.service.Get(ctx, req.TaskID)
	if err != nil {
		return TaskView{}, err
	}
	return *v, nil
}

func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	tasks, err := m.service.List(ctx, req.Status, req.AssigneeID)
	if err != nil {
		return ListTasksResponse{}, err
	}
	return ListTasksResponse{Tasks: tasks}, nil
}

func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskView, error) {
	v, err := m.service.Update(ctx, req.Actor, req.TaskID, req.Patch)
	if err != nil {
		return TaskView{}, err
	}
	return *v, nil
}

func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.Actor, req.TaskID); err != nil {
		return DeleteTaskResponse{}, err
	}
	return DeleteTaskResponse{Deleted: true}, nil
}

// busNotifier publishes task changes on the mono event bus.
type busNotifier struct {
	bus    mono.EventBus
	logger types.Logger
}

// TaskChanged publishes ev. Publishing is best-effort; failures are logged.
func (n *busNotifier) TaskChanged(ev events.TaskChangedEvent) {
	var err error
	switch ev.Action {
	case events.ActionCreated:
		err = events.TaskCreatedV1.Publish(n.bus, ev, nil)
	case events.ActionUpdated:
		err = events.TaskUpdatedV1.Publish(n.bus, ev, nil)
	case events.ActionDeleted:
		err = events.TaskDeletedV1.Publish(n.bus, ev, nil)
	default:
		err = fmt.Errorf("unknown action %q", ev.Action)
	}
	if err != nil {
		n.logger.Warn("Failed to publish task event", "taskID", ev.TaskID, "action", ev.Action, "error", err)
	}
}
