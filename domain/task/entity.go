package task

import "time"

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
	MinPriority          = 1
	MaxPriority          = 5
	DefaultPriority      = 3
)

// Task is a unit of work on the board.
type Task struct {
	ID          string    `gorm:"primaryKey;type:text" json:"id"`
	Title       string    `gorm:"not null;size:200" json:"title"`
	Description string    `gorm:"size:1000" json:"description"`
	Status      Status    `gorm:"not null;type:text;index" json:"status"`
	Priority    int       `gorm:"not null;default:3" json:"priority"`
	AssigneeID  *string   `gorm:"type:text;index" json:"assigneeId"`
	CreatorID   string    `gorm:"not null;type:text" json:"creatorId"`
	CreatedAt   time.Time `gorm:"index;autoCreateTime:false" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false" json:"updatedAt"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// Draft is the caller-controlled part of a new task.
type Draft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    int     `json:"priority"`
	AssigneeID  *string `json:"assigneeId"`
}

// Validate checks the draft's field constraints.
// A zero priority means the default was requested.
func (d Draft) Validate() error {
	if err := validateTitle(d.Title); err != nil {
		return err
	}
	if err := validateDescription(d.Description); err != nil {
		return err
	}
	if d.Priority != 0 {
		return validatePriority(d.Priority)
	}
	return nil
}

// New builds a Todo task owned by creatorID. The status is never taken from input.
func New(id, creatorID string, d Draft, now time.Time) *Task {
	priority := d.Priority
	if priority == 0 {
		priority = DefaultPriority
	}
	return &Task{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Status:      StatusTodo,
		Priority:    priority,
		AssigneeID:  d.AssigneeID,
		CreatorID:   creatorID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Filter narrows a task listing. Empty fields match everything.
type Filter struct {
	Status     *Status `json:"status,omitempty"`
	AssigneeID string  `json:"assignee_id,omitempty"`
}
