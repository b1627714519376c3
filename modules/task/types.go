package task

import (
	"time"

	domain "github.com/example/task-board/domain/task"
	"github.com/example/task-board/domain/user"
)

// TaskView is a task with creator and assignee names resolved.
type TaskView struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Status       domain.Status `json:"status"`
	Priority     int           `json:"priority"`
	AssigneeID   *string       `json:"assigneeId"`
	AssigneeName string        `json:"assigneeName"`
	CreatorID    string        `json:"creatorId"`
	CreatorName  string        `json:"creatorName"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Actor user.Actor   `json:"actor"`
	Draft domain.Draft `json:"draft"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID string `json:"task_id"`
}

// ListTasksRequest is the request for listing tasks. Status is a status name.
type ListTasksRequest struct {
	Status     string `json:"status,omitempty"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

// ListTasksResponse is the response for listing tasks.
type ListTasksResponse struct {
	Tasks []TaskView `json:"tasks"`
}

// UpdateTaskRequest carries a partial update. Absent patch fields stay absent
// on the wire.
type UpdateTaskRequest struct {
	Actor  user.Actor   `json:"actor"`
	TaskID string       `json:"task_id"`
	Patch  domain.Patch `json:"patch"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	Actor  user.Actor `json:"actor"`
	TaskID string     `json:"task_id"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool `json:"deleted"`
}
