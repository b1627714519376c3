package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// Optional marks whether a field was present in a partial update.
// A present JSON null is Set and Null with the zero value.
type Optional[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// IsZero reports an absent field, so `omitzero` drops it when encoding.
func (o Optional[T]) IsZero() bool {
	return !o.Set
}

// MarshalJSON encodes the held value.
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.Set || o.Null {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

// UnmarshalJSON marks the field present and decodes its value.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	var zero T
	o.Value, o.Set, o.Null = zero, true, false
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Null = true
		return nil
	}
	return json.Unmarshal(data, &o.Value)
}

// Patch is a partial update. Absent fields leave the stored value unchanged.
type Patch struct {
	Title       Optional[string]  `json:"title,omitzero"`
	Description Optional[string]  `json:"description,omitzero"`
	Status      Optional[Status]  `json:"status,omitzero"`
	Priority    Optional[int]     `json:"priority,omitzero"`
	AssigneeID  Optional[*string] `json:"assigneeId,omitzero"`
}

// Validate checks the constraints of every present field.
// Only description and assignee may be cleared with null.
func (p Patch) Validate() error {
	switch {
	case p.Title.Null:
		return fmt.Errorf("%w: title cannot be null", ErrValidation)
	case p.Status.Null:
		return fmt.Errorf("%w: status cannot be null", ErrValidation)
	case p.Priority.Null:
		return fmt.Errorf("%w: priority cannot be null", ErrValidation)
	}
	if p.Title.Set {
		if err := validateTitle(p.Title.Value); err != nil {
			return err
		}
	}
	if p.Description.Set {
		if err := validateDescription(p.Description.Value); err != nil {
			return err
		}
	}
	if p.Priority.Set {
		if err := validatePriority(p.Priority.Value); err != nil {
			return err
		}
	}
	if p.Status.Set && !p.Status.Value.Valid() {
		return fmt.Errorf("%w: unknown status", ErrValidation)
	}
	return nil
}

// Apply stages the patch on a copy of t. The receiver is never modified, so a
// rejected status change discards the field edits staged alongside it.
func (t Task) Apply(p Patch, now time.Time) (Task, error) {
	staged := t
	if p.Title.Set {
		staged.Title = p.Title.Value
	}
	if p.Description.Set {
		staged.Description = p.Description.Value
	}
	if p.Priority.Set {
		staged.Priority = p.Priority.Value
	}
	if p.AssigneeID.Set {
		staged.AssigneeID = p.AssigneeID.Value
	}
	if p.Status.Set && p.Status.Value != t.Status {
		if !IsValidTransition(t.Status, p.Status.Value) {
			return t, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, t.Status, p.Status.Value)
		}
		staged.Status = p.Status.Value
	}
	if now.Before(staged.CreatedAt) {
		now = staged.CreatedAt
	}
	staged.UpdatedAt = now
	return staged, nil
}

func validateTitle(title string) error {
	if title == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("%w: title must be at most %d characters", ErrValidation, MaxTitleLength)
	}
	return nil
}

func validateDescription(description string) error {
	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", ErrValidation, MaxDescriptionLength)
	}
	return nil
}

func validatePriority(priority int) error {
	if priority < MinPriority || priority > MaxPriority {
		return fmt.Errorf("%w: priority must be between %d and %d", ErrValidation, MinPriority, MaxPriority)
	}
	return nil
}
