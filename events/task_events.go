package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// Task change actions carried by TaskChangedEvent.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// TaskChangedEvent is emitted after a task is created, updated or deleted.
type TaskChangedEvent struct {
	TaskID    string    `json:"task_id"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	Status    string    `json:"status,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Event definitions for the task domain.
var (
	// TaskCreatedV1 subject: events.task.v1.task-created
	TaskCreatedV1 = helper.EventDefinition[TaskChangedEvent](
		"task", "TaskCreated", "v1",
	)

	// TaskUpdatedV1 subject: events.task.v1.task-updated
	TaskUpdatedV1 = helper.EventDefinition[TaskChangedEvent](
		"task", "TaskUpdated", "v1",
	)

	// TaskDeletedV1 subject: events.task.v1.task-deleted
	TaskDeletedV1 = helper.EventDefinition[TaskChangedEvent](
		"task", "TaskDeleted", "v1",
	)
)
