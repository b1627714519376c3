package task

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Status is the closed set of board columns a task moves through.
type Status int

const (
	StatusTodo Status = iota
	StatusInProgress
	StatusDone
)

var statusNames = [...]string{
	StatusTodo:       "Todo",
	StatusInProgress: "InProgress",
	StatusDone:       "Done",
}

// Statuses lists every status in board order.
func Statuses() []Status {
	return []Status{StatusTodo, StatusInProgress, StatusDone}
}

// ParseStatus parses a status name, ignoring case.
func ParseStatus(s string) (Status, error) {
	for st, name := range statusNames {
		if strings.EqualFold(s, name) {
			return Status(st), nil
		}
	}
	return StatusTodo, fmt.Errorf("%w: unknown status %q", ErrValidation, s)
}

// String returns the status name.
func (s Status) String() string {
	if !s.Valid() {
		return fmt.Sprintf("Status(%d)", int(s))
	}
	return statusNames[s]
}

// Valid reports whether s is one of the defined statuses.
func (s Status) Valid() bool {
	return s >= 0 && int(s) < len(statusNames)
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Value stores the status by name.
func (s Status) Value() (driver.Value, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid status %d", int(s))
	}
	return s.String(), nil
}

// Scan reads a status stored by name.
func (s *Status) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return s.UnmarshalText([]byte(v))
	case []byte:
		return s.UnmarshalText(v)
	default:
		return fmt.Errorf("cannot scan %T into Status", src)
	}
}
