package service

import (
	"context"
	"log/slog"

	"github.com/pelada/matchday/internal/auth"
	"github.com/pelada/matchday/internal/models"
)

// AuthService handles account registration and login, issuing JWT tokens.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
	}
}

// Register creates a new account and returns it with a session token.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.Profile, string, error) {
	slog.Info("Register request", "email", email)

	if email == "" || name == "" {
		return nil, "", auth.ErrInvalidCredentials
	}

	profile, err := s.authenticator.Register(ctx, email, name, password)
	if err != nil {
		slog.Error("Registration failed", "email", email, "error", err)
		return nil, "", err
	}

	token, err := s.jwtManager.Generate(profile)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", profile.ID, "error", err)
		return nil, "", err
	}

	slog.Info("User registered", "user_id", profile.ID, "email", profile.Email)
	return profile, token, nil
}

// Login authenticates an account and returns it with a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.Profile, string, error) {
	slog.Info("Login request", "email", email)

	if email == "" || password == "" {
		return nil, "", auth.ErrInvalidCredentials
	}

	profile, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("Login failed", "email", email, "error", err)
		return nil, "", auth.ErrInvalidCredentials
	}

	token, err := s.jwtManager.Generate(profile)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", profile.ID, "error", err)
		return nil, "", err
	}

	slog.Info("User logged in", "user_id", profile.ID, "email", profile.Email)
	return profile, token, nil
}
