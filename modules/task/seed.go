package task

import (
	"context"
	"fmt"
	"time"

	domain "github.com/example/task-board/domain/task"
	"github.com/google/uuid"
)

const (
	seedAdminEmail = "admin@example.com"
	seedUserEmail  = "user@example.com"
)

type seedTask struct {
	title       string
	description string
	status      domain.Status
	priority    int
	byAdmin     bool
	assignee    string // "admin", "user" or ""
}

var demoTasks = []seedTask{
	{
		title:       "Setup project repository",
		description: "Initialize Git repository and create basic project structure",
		status:      domain.StatusDone, priority: 5, byAdmin: true, assignee: "admin",
	},
	{
		title:       "Design database schema",
		description: "Create entity models and database migrations for the task management system",
		status:      domain.StatusDone, priority: 4, byAdmin: true, assignee: "user",
	},
	{
		title:       "Implement authentication",
		description: "Add JWT-based authentication with user registration and login",
		status:      domain.StatusInProgress, priority: 5, byAdmin: true, assignee: "user",
	},
	{
		title:       "Create task CRUD endpoints",
		description: "Build REST API endpoints for creating, reading, updating, and deleting tasks",
		status:      domain.StatusInProgress, priority: 4, byAdmin: false, assignee: "user",
	},
	{
		title:       "Add task status transitions",
		description: "Implement business rules for valid task status changes (Todo → InProgress → Done)",
		status:      domain.StatusTodo, priority: 3, byAdmin: false,
	},
	{
		title:       "Build React frontend",
		description: "Create React components for task management interface with 3-column board layout",
		status:      domain.StatusTodo, priority: 3, byAdmin: true,
	},
}

// SeedDemoTasks fills an empty tasks table with the demo board. It needs the
// demo accounts and returns 0 without error when they do not exist.
func (s *TaskService) SeedDemoTasks(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	if count > 0 || s.users == nil {
		return 0, nil
	}

	users, err := s.users.ListUsers(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list users: %w", err)
	}
	ids := map[string]string{}
	for _, u := range users {
		switch u.Email {
		case seedAdminEmail:
			ids["admin"] = u.ID
		case seedUserEmail:
			ids["user"] = u.ID
		}
	}
	if ids["admin"] == "" || ids["user"] == "" {
		return 0, nil
	}

	// oldest first, one minute apart, so the board keeps this order
	start := s.now().Add(-time.Duration(len(demoTasks)) * time.Minute)
	for i, st := range demoTasks {
		creator := ids["user"]
		if st.byAdmin {
			creator = ids["admin"]
		}
		created := start.Add(time.Duration(i) * time.Minute)

		t := domain.New(uuid.New().String(), creator, domain.Draft{
			Title:       st.title,
			Description: st.description,
			Priority:    st.priority,
		}, created)
		t.Status = st.status
		if st.assignee != "" {
			id := ids[st.assignee]
			t.AssigneeID = &id
		}

		if err := s.repo.Create(ctx, t); err != nil {
			return i, fmt.Errorf("failed to seed task %q: %w", st.title, err)
		}
	}
	return len(demoTasks), nil
}
