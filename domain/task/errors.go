package task

import "errors"

var (
	// ErrTaskNotFound is returned when the referenced task does not exist.
	ErrTaskNotFound = errors.New("task not found")
	// ErrForbidden is returned when the actor is neither the creator nor an admin.
	ErrForbidden = errors.New("only the task creator or an admin can modify this task")
	// ErrInvalidTransition is returned for a status change that is not a forward edge.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrValidation is returned when a request field is out of range.
	ErrValidation = errors.New("validation failed")
)
