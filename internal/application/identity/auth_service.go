package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lumina/storefront/internal/domain/identity"
	"github.com/lumina/storefront/internal/domain/shared"
	"github.com/lumina/storefront/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// BootstrapAdminName is the display name given to the first admin
const BootstrapAdminName = "Store Admin"

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	// BootstrapAdminEmail signs in as a new ADMIN while no account exists.
	// Empty disables bootstrapping.
	BootstrapAdminEmail string
}

// AuthService handles registration, login and profile lookups
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	jwtService *auth.JWTService,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	config.BootstrapAdminEmail = identity.NormalizeEmail(config.BootstrapAdminEmail)
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		config:     config,
		logger:     logger,
	}
}

// Register creates a CUSTOMER account and signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	email := identity.NormalizeEmail(input.Email)

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "User already exists")
	}

	user, err := identity.NewUser(email, input.Name, input.Password, identity.RoleCustomer)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "User already exists")
		}
		s.logger.Error("Failed to create user", zap.Error(err))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return s.issue(user)
}

// Login verifies credentials and returns a fresh token. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	email := identity.NormalizeEmail(input.Email)

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
		user, err = s.bootstrapAdmin(ctx, email, input.Password)
		if err != nil {
			return nil, err
		}
		if user == nil {
			s.logger.Warn("Login for unknown email", zap.String("email", email))
			return nil, invalidCredentials()
		}
	}

	if !user.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, invalidCredentials()
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return s.issue(user)
}

// Me returns the profile of the signed-in user
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("User")
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// bootstrapAdmin creates the first ADMIN when the user table is empty and
// the email matches the configured bootstrap address. It returns nil, nil
// when bootstrapping does not apply.
func (s *AuthService) bootstrapAdmin(ctx context.Context, email, password string) (*identity.User, error) {
	if s.config.BootstrapAdminEmail == "" || email != s.config.BootstrapAdminEmail {
		return nil, nil
	}
	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return nil, nil
	}

	admin, err := identity.NewUser(email, BootstrapAdminName, password, identity.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Create(ctx, admin); err != nil {
		if errors.Is(err, shared.ErrAlreadyExists) {
			// Lost a race with a concurrent bootstrap; verify against the winner.
			return s.userRepo.FindByEmail(ctx, email)
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	s.logger.Warn("Bootstrap admin created", zap.String("email", email))
	return admin, nil
}

func (s *AuthService) issue(user *identity.User) (*AuthResult, error) {
	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError(shared.CodeInternal, "Failed to generate authentication token")
	}
	return &AuthResult{
		UserResponse: ToUserResponse(user),
		Token:        token.AccessToken,
		ExpiresAt:    token.ExpiresAt,
	}, nil
}

func invalidCredentials() error {
	return shared.NewDomainError(shared.CodeUnauthorized, "Invalid email or password")
}
