package identity

import (
	"context"
	"errors"

	"github.com/debttrack/backend/internal/domain/identity"
	"github.com/debttrack/backend/internal/domain/shared"
	"github.com/debttrack/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// UserService handles account registration and authentication
type UserService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	logger *zap.Logger,
) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a new account. Uniqueness is enforced by the insert
// itself: a duplicate email surfaces as the storage layer's
// unique-violation, translated here into a conflict the caller can act on.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*UserResult, error) {
	user, err := identity.NewUser(input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			s.logger.Warn("Registration conflict", zap.String("email", user.Email))
			return nil, shared.NewDomainError("ALREADY_EXISTS", "User already exists")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, err
	}

	s.logger.Info("User registered",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email))

	return &UserResult{ID: user.ID, Email: user.Email}, nil
}

// Login verifies the credentials and issues an access token. A missing
// account and a wrong password produce the same error.
func (s *UserService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	user, err := s.VerifyCredentials(ctx, input.Email, input.Password)
	if err != nil {
		return nil, err
	}

	token, err := s.jwtService.GenerateToken(user.ID, user.Email)
	if err != nil {
		s.logger.Error("Failed to issue token", zap.Int64("user_id", user.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("User logged in", zap.Int64("user_id", user.ID))

	return &LoginResult{
		User:        UserResult{ID: user.ID, Email: user.Email},
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// VerifyCredentials checks an email/password pair against the stored
// credential and returns the matching account.
func (s *UserService) VerifyCredentials(ctx context.Context, email, password string) (*identity.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, identity.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email")
			return nil, shared.ErrInvalidCredentials
		}
		return nil, err
	}

	if !user.VerifyPassword(password) {
		s.logger.Warn("Login attempt with wrong password", zap.Int64("user_id", user.ID))
		return nil, shared.ErrInvalidCredentials
	}

	return user, nil
}
