package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	domain "github.com/example/task-board/domain/user"
	"github.com/example/task-board/pkg/database"
	"github.com/example/task-board/pkg/env"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
	"gorm.io/gorm"
)

// AuthModule provides authentication services.
type AuthModule struct {
	db         *gorm.DB
	service    *AuthService
	dbPath     string
	seed       bool
	bcryptCost int
	logger     types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*AuthModule)(nil)
var _ mono.ServiceProviderModule = (*AuthModule)(nil)
var _ mono.HealthCheckableModule = (*AuthModule)(nil)

// NewModule creates a new AuthModule.
func NewModule(logger types.Logger) *AuthModule {
	return &AuthModule{
		dbPath:     env.String("AUTH_DB_PATH", "auth.db"),
		seed:       env.Bool("SEED_DEMO_DATA", true),
		bcryptCost: env.Int("BCRYPT_COST", DefaultBcryptCost),
		logger:     logger,
	}
}

// Name returns the module name.
func (m *AuthModule) Name() string {
	return "auth"
}

// Start opens the user store and seeds demo accounts when enabled.
func (m *AuthModule) Start(ctx context.Context) error {
	db, err := database.OpenSQLite(m.dbPath, &domain.User{})
	if err != nil {
		return err
	}
	m.db = db

	m.service = NewAuthService(NewUserRepository(db), NewPasswordHasher(m.bcryptCost), NewJWTManager(loadJWTConfig(m.logger)))

	if m.seed {
		n, err := m.service.SeedDemoUsers(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			m.logger.Info("Seeded demo users", "count", n)
		}
	}

	m.logger.Info("Auth module started", "database", m.dbPath)
	return nil
}

// Stop shuts down the module.
func (m *AuthModule) Stop(_ context.Context) error {
	if err := database.Close(m.db); err != nil {
		m.logger.Warn("Failed to close database", "error", err)
	}
	m.logger.Info("Auth module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *AuthModule) Health(_ context.Context) mono.HealthStatus {
	if err := database.Ping(m.db); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"database": m.dbPath,
		},
	}
}

// RegisterServices registers request-reply services in the service container.
func (m *AuthModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container,
		"register",
		json.Unmarshal,
		json.Marshal,
		m.handleRegister,
	); err != nil {
		return fmt.Errorf("failed to register register service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"login",
		json.Unmarshal,
		json.Marshal,
		m.handleLogin,
	); err != nil {
		return fmt.Errorf("failed to register login service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"validate-token",
		json.Unmarshal,
		json.Marshal,
		m.handleValidateToken,
	); err != nil {
		return fmt.Errorf("failed to register validate-token service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container,
		"list-users",
		json.Unmarshal,
		json.Marshal,
		m.handleListUsers,
	); err != nil {
		return fmt.Errorf("failed to register list-users service: %w", err)
	}

	m.logger.Info("Registered services", "services", "register, login, validate-token, list-users")
	return nil
}

func (m *AuthModule) handleRegister(ctx context.Context, req RegisterRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return SessionResponse{}, err
	}
	m.logger.Info("User registered", "username", session.Username)
	return m.toSessionResponse(session), nil
}

func (m *AuthModule) handleLogin(ctx context.Context, req LoginRequest, _ *mono.Msg) (SessionResponse, error) {
	session, err := m.service.Login(ctx, req.Email, req.Password)
	if err != nil {
		return SessionResponse{}, err
	}
	return m.toSessionResponse(session), nil
}

// handleValidateToken reports validation failures in the response body, not as errors.
func (m *AuthModule) handleValidateToken(ctx context.Context, req ValidateTokenRequest, _ *mono.Msg) (ValidateTokenResponse, error) {
	claims, err := m.service.ValidateToken(ctx, req.Token)
	if err != nil {
		errMsg := ErrInvalidToken.Error()
		if errors.Is(err, ErrExpiredToken) {
			errMsg = ErrExpiredToken.Error()
		}
		return ValidateTokenResponse{
			Valid: false,
			Error: errMsg,
		}, nil
	}

	return ValidateTokenResponse{
		Valid:    true,
		UserID:   claims.UserID,
		Username: claims.Username,
		Email:    claims.Email,
		Role:     claims.Role,
	}, nil
}

func (m *AuthModule) handleListUsers(ctx context.Context, req ListUsersRequest, _ *mono.Msg) (ListUsersResponse, error) {
	users, err := m.service.ListUsers(ctx, req.IDs)
	if err != nil {
		return ListUsersResponse{}, err
	}

	resp := ListUsersResponse{Users: make([]UserResponse, 0, len(users))}
	for i := range users {
		resp.Users = append(resp.Users, toUserResponse(&users[i]))
	}
	return resp, nil
}

func (m *AuthModule) toSessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		Username:  s.Username,
		Role:      s.Role,
		ExpiresIn: s.ExpiresIn,
	}
}

// loadJWTConfig loads JWT configuration from environment variables.
func loadJWTConfig(log types.Logger) JWTConfig {
	config := DefaultJWTConfig()

	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.SecretKey = secret
	} else {
		log.Warn("JWT_SECRET_KEY not set, using development secret")
	}

	config.Issuer = env.String("JWT_ISSUER", config.Issuer)
	config.TokenDuration = env.Duration("JWT_ACCESS_TTL", config.TokenDuration)

	return config
}
