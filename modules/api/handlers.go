package api

import (
	"encoding/json"
	"errors"
	"strings"

	domain "github.com/example/task-board/domain/task"
	"github.com/example/task-board/modules/auth"
	"github.com/example/task-board/modules/task"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
)

// Handlers contains HTTP handlers for the API.
type Handlers struct {
	auth   auth.AuthPort
	tasks  task.TaskPort
	logger types.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(authAdapter auth.AuthPort, taskAdapter task.TaskPort, logger types.Logger) *Handlers {
	return &Handlers{
		auth:   authAdapter,
		tasks:  taskAdapter,
		logger: logger,
	}
}

// Register handles user registration.
func (h *Handlers) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
	}

	if req.Username == "" || req.Email == "" || req.Password == "" {
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "Username, email and password are required")
	}

	session, err := h.auth.Register(c.UserContext(), auth.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(SessionResponse{
		Token:     session.Token,
		Username:  session.Username,
		Role:      session.Role,
		ExpiresIn: session.ExpiresIn,
	})
}

// Login handles user login.
func (h *Handlers) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
	}

	if req.Email == "" || req.Password == "" {
		return errorJSON(c, fiber.StatusBadRequest, CodeValidation, "Email and password are required")
	}

	session, err := h.auth.Login(c.UserContext(), auth.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}

	return c.Status(fiber.StatusOK).JSON(SessionResponse{
		Token:     session.Token,
		Username:  session.Username,
		Role:      session.Role,
		ExpiresIn: session.ExpiresIn,
	})
}

// ListUsers returns every user ordered by username.
func (h *Handlers) ListUsers(c *fiber.Ctx) error {
	users, err := h.auth.ListUsers(c.UserContext(), nil)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if users == nil {
		users = []auth.UserResponse{}
	}
	return c.JSON(users)
}

// ListTasks handles GET /tasks?status=&assignee=. The status name is checked
// here so the task service only ever sees canonical names.
func (h *Handlers) ListTasks(c *fiber.Ctx) error {
	status := strings.TrimSpace(c.Query("status"))
	if status != "" {
		parsed, err := domain.ParseStatus(status)
		if err != nil {
			return writeError(c, h.logger, err)
		}
		status = parsed.String()
	}

	tasks, err := h.tasks.ListTasks(c.UserContext(), task.ListTasksRequest{
		Status:     status,
		AssigneeID: strings.TrimSpace(c.Query("assignee")),
	})
	if err != nil {
		return writeError(c, h.logger, err)
	}
	if tasks == nil {
		tasks = []task.TaskView{}
	}
	return c.JSON(tasks)
}

// GetTask handles GET /tasks/:id.
func (h *Handlers) GetTask(c *fiber.Ctx) error {
	view, err := h.tasks.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(view)
}

// CreateTask handles POST /tasks.
func (h *Handlers) CreateTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, CodeUnauthorized, "User not authenticated")
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return errorJSON(c, fiber.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
	}

	view, err := h.tasks.CreateTask(c.UserContext(), claims.Actor(), req.draft())
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// UpdateTask handles PUT /tasks/:id. Only the fields present in the body
// change; a null assigneeId clears the assignee.
func (h *Handlers) UpdateTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, CodeUnauthorized, "User not authenticated")
	}

	var patch domain.Patch
	if err := json.Unmarshal(c.Body(), &patch); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			return writeError(c, h.logger, err)
		}
		return errorJSON(c, fiber.StatusBadRequest, CodeInvalidRequest, "Invalid request body")
	}

	view, err := h.tasks.UpdateTask(c.UserContext(), claims.Actor(), c.Params("id"), patch)
	if err != nil {
		return writeError(c, h.logger, err)
	}
	return c.JSON(view)
}

// DeleteTask handles DELETE /tasks/:id.
func (h *Handlers) DeleteTask(c *fiber.Ctx) error {
	claims, ok := claimsFrom(c)
	if !ok {
		return errorJSON(c, fiber.StatusUnauthorized, CodeUnauthorized, "User not authenticated")
	}

	if err := h.tasks.DeleteTask(c.UserContext(), claims.Actor(), c.Params("id")); err != nil {
		return writeError(c, h.logger, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
