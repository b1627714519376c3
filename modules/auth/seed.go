package auth

import (
	"context"
	"fmt"

	domain "github.com/example/task-board/domain/user"
)

// DemoUser is an account created on first start when demo seeding is enabled.
type DemoUser struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
}

// DemoUsers are the accounts seeded into an empty users table.
var DemoUsers = []DemoUser{
	{Username: "admin", Email: "admin@example.com", Password: "Admin123!", Role: domain.RoleAdmin},
	{Username: "user", Email: "user@example.com", Password: "User123!", Role: domain.RoleUser},
}

// SeedDemoUsers creates DemoUsers when no user exists yet. It returns the
// number of users created.
func (s *AuthService) SeedDemoUsers(ctx context.Context) (int, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	for i, u := range DemoUsers {
		if _, err := s.createUser(ctx, u.Username, u.Email, u.Password, u.Role); err != nil {
			return i, fmt.Errorf("failed to seed %s: %w", u.Email, err)
		}
	}
	return len(DemoUsers), nil
}
