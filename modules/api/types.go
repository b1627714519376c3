package api

import (
	domain "github.com/example/task-board/domain/task"
	"github.com/example/task-board/domain/user"
)

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SessionResponse is returned by register and login.
type SessionResponse struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	Role      user.Role `json:"role"`
	ExpiresIn int64     `json:"expiresIn"`
}

// CreateTaskRequest is the body of POST /tasks. Any status sent by the client
// is ignored; new tasks always start in Todo.
type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Priority    int     `json:"priority"`
	AssigneeID  *string `json:"assigneeId"`
}

func (r CreateTaskRequest) draft() domain.Draft {
	return domain.Draft{
		Title:       r.Title,
		Description: r.Description,
		Priority:    r.Priority,
		AssigneeID:  r.AssigneeID,
	}
}

// HealthResponse aggregates module health for GET /health.
type HealthResponse struct {
	Status  string                  `json:"status"`
	Modules map[string]ModuleHealth `json:"modules"`
}

// ModuleHealth is one module's entry in HealthResponse.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
