package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-board/domain/task"
	"github.com/example/task-board/domain/user"
	"github.com/example/task-board/pkg/remote"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the task operations other modules use.
type TaskPort interface {
	CreateTask(ctx context.Context, actor user.Actor, draft domain.Draft) (*TaskView, error)
	GetTask(ctx context.Context, taskID string) (*TaskView, error)
	ListTasks(ctx context.Context, req ListTasksRequest) ([]TaskView, error)
	UpdateTask(ctx context.Context, actor user.Actor, taskID string, patch domain.Patch) (*TaskView, error)
	DeleteTask(ctx context.Context, actor user.Actor, taskID string) error
}

// knownErrors are the task errors restored from request-reply failures.
var knownErrors = []error{
	domain.ErrTaskNotFound,
	domain.ErrForbidden,
	domain.ErrInvalidTransition,
	domain.ErrValidation,
}

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer from the task module received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// CreateTask creates a new task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, actor user.Actor, draft domain.Draft) (*TaskView, error) {
	req := CreateTaskRequest{Actor: actor, Draft: draft}
	var resp TaskView
	if err := call(ctx, a.container, "create-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, taskID string) (*TaskView, error) {
	req := GetTaskRequest{TaskID: taskID}
	var resp TaskView
	if err := call(ctx, a.container, "get-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTasks lists tasks via the list-tasks service.
func (a *taskAdapter) ListTasks(ctx context.Context, req ListTasksRequest) ([]TaskView, error) {
	var resp ListTasksResponse
	if err := call(ctx, a.container, "list-tasks", &req, &resp); err != nil {
		return nil, err
	}
	return resp.Tasks, nil
}

// UpdateTask applies a partial update via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, actor user.Actor, taskID string, patch domain.Patch) (*TaskView, error) {
	req := UpdateTaskRequest{Actor: actor, TaskID: taskID, Patch: patch}
	var resp TaskView
	if err := call(ctx, a.container, "update-task", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, actor user.Actor, taskID string) error {
	req := DeleteTaskRequest{Actor: actor, TaskID: taskID}
	var resp DeleteTaskResponse
	return call(ctx, a.container, "delete-task", &req, &resp)
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		if mapped := remote.Error(err, knownErrors...); mapped != err {
			return mapped
		}
		return fmt.Errorf("%s service call failed: %w", service, err)
	}
	return nil
}
