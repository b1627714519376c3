package auth

import (
	domain "github.com/example/task-board/domain/user"
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

// SessionResponse is returned by both register and login.
type SessionResponse struct {
	Token     string      `json:"token"`
	Username  string      `json:"username"`
	Role      domain.Role `json:"role"`
	ExpiresIn int64       `json:"expires_in"`
}

func (r SessionResponse) session() *domain.Session {
	return &domain.Session{
		Token:     r.Token,
		Username:  r.Username,
		Role:      r.Role,
		ExpiresIn: r.ExpiresIn,
	}
}

// ValidateTokenRequest represents a token validation request.
type ValidateTokenRequest struct {
	Token string `json:"token"`
}

// ValidateTokenResponse represents a token validation response.
type ValidateTokenResponse struct {
	Valid    bool        `json:"valid"`
	UserID   string      `json:"user_id,omitempty"`
	Username string      `json:"username,omitempty"`
	Email    string      `json:"email,omitempty"`
	Role     domain.Role `json:"role"`
	Error    string      `json:"error,omitempty"`
}

// UserResponse is the public projection of a user.
type UserResponse struct {
	ID       string      `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
}

// ListUsersRequest lists users, optionally restricted to the given ids.
type ListUsersRequest struct {
	IDs []string `json:"ids,omitempty"`
}

// ListUsersResponse carries users ordered by username.
type ListUsersResponse struct {
	Users []UserResponse `json:"users"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}
