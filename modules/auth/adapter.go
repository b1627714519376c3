package auth

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-board/domain/user"
	"github.com/example/task-board/pkg/remote"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// AuthPort defines the interface for authentication operations.
// This is the port that other modules use to access auth functionality.
type AuthPort interface {
	Register(ctx context.Context, req RegisterRequest) (*domain.Session, error)
	Login(ctx context.Context, req LoginRequest) (*domain.Session, error)
	ValidateToken(ctx context.Context, token string) (*domain.Claims, error)
	ListUsers(ctx context.Context, ids []string) ([]UserResponse, error)
}

// knownErrors are the auth errors restored from request-reply failures.
var knownErrors = []error{
	ErrInvalidCredentials,
	ErrInvalidEmail,
	ErrInvalidUsername,
	ErrWeakPassword,
	ErrPasswordTooLong,
	ErrUserExists,
}

// AuthAdapter implements AuthPort using the service container.
type AuthAdapter struct {
	container mono.ServiceContainer
}

var _ AuthPort = (*AuthAdapter)(nil)

// NewAuthAdapter creates a new AuthAdapter.
func NewAuthAdapter(container mono.ServiceContainer) *AuthAdapter {
	return &AuthAdapter{
		container: container,
	}
}

// Register creates an account and returns its session.
func (a *AuthAdapter) Register(ctx context.Context, req RegisterRequest) (*domain.Session, error) {
	var resp SessionResponse
	if err := call(ctx, a.container, "register", &req, &resp); err != nil {
		return nil, err
	}
	return resp.session(), nil
}

// Login authenticates and returns a session.
func (a *AuthAdapter) Login(ctx context.Context, req LoginRequest) (*domain.Session, error) {
	var resp SessionResponse
	if err := call(ctx, a.container, "login", &req, &resp); err != nil {
		return nil, err
	}
	return resp.session(), nil
}

// ValidateToken validates an access token and returns claims.
func (a *AuthAdapter) ValidateToken(ctx context.Context, token string) (*domain.Claims, error) {
	req := ValidateTokenRequest{Token: token}
	var resp ValidateTokenResponse

	if err := call(ctx, a.container, "validate-token", &req, &resp); err != nil {
		return nil, err
	}

	if !resp.Valid {
		if resp.Error == ErrExpiredToken.Error() {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return &domain.Claims{
		UserID:   resp.UserID,
		Username: resp.Username,
		Email:    resp.Email,
		Role:     resp.Role,
	}, nil
}

// ListUsers returns users ordered by username. An empty ids slice lists all users.
func (a *AuthAdapter) ListUsers(ctx context.Context, ids []string) ([]UserResponse, error) {
	req := ListUsersRequest{IDs: ids}
	var resp ListUsersResponse
	if err := call(ctx, a.container, "list-users", &req, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func call[Req, Resp any](ctx context.Context, container mono.ServiceContainer, service string, req *Req, resp *Resp) error {
	if err := helper.CallRequestReplyService(
		ctx,
		container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		resp,
	); err != nil {
		if mapped := remote.Error(err, knownErrors...); mapped != err {
			return mapped
		}
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}
