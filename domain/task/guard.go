package task

import (
	"time"

	"github.com/example/task-board/domain/user"
)

// IsValidTransition reports whether a task may move from one status to another.
// Staying put is always allowed; otherwise only the single forward step is.
func IsValidTransition(from, to Status) bool {
	if from == to {
		return true
	}
	switch from {
	case StatusTodo:
		return to == StatusInProgress
	case StatusInProgress:
		return to == StatusDone
	default:
		return false
	}
}

// AuthorizeMutation allows the task's creator or an admin to change or delete it.
// It returns ErrForbidden for everyone else.
func AuthorizeMutation(actor user.Actor, t *Task) error {
	if actor.UserID != "" && actor.UserID == t.CreatorID {
		return nil
	}
	if actor.Role.CanModifyAnyTask() {
		return nil
	}
	return ErrForbidden
}

// Mutate runs the update checks in order: authorization first, then field
// constraints and the status transition. On any error t is returned unchanged.
func Mutate(actor user.Actor, t *Task, p Patch, now time.Time) (Task, error) {
	if err := AuthorizeMutation(actor, t); err != nil {
		return *t, err
	}
	if err := p.Validate(); err != nil {
		return *t, err
	}
	return t.Apply(p, now)
}
