// Package identity implements the thin auth boundary: signup, login
// and token verification. It exists so preferences and recommendations
// have an authenticated owner.
package identity

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/neighbourhood/backend/internal/domain/identity"
	"github.com/neighbourhood/backend/internal/domain/shared"
	"github.com/neighbourhood/backend/internal/infrastructure/auth"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.Repository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(userRepo identity.Repository, jwtService *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Signup registers a new account and returns a token
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	existing, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "An account with this email already exists")
	}

	user, err := identity.NewUser(req.Email, req.Name, req.Password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.issueToken(user)
}

// Login authenticates an account and returns a token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.CheckPassword(req.Password) {
		s.logger.Warn("Failed login attempt", zap.String("email", req.Email))
		return nil, shared.ErrInvalidCredentials
	}

	return s.issueToken(user)
}

// Verify resolves a bearer token to the user it was issued for
func (s *AuthService) Verify(ctx context.Context, token string) (*UserResponse, error) {
	claims, err := s.jwtService.ValidateToken(token)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.ErrUnauthorized
	}
	return NewUserResponse(user), nil
}

func (s *AuthService) issueToken(user *identity.User) (*AuthResponse, error) {
	token, expiresAt, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_ERROR", "Failed to issue token")
	}
	return &AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      *NewUserResponse(user),
	}, nil
}
