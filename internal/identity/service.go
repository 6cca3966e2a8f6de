package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/ratehub/ratehub/internal/domain"
	"github.com/ratehub/ratehub/internal/pkg/metrics"
)

// Authenticator mints and verifies identity tokens.
type Authenticator interface {
	GenerateToken(userID int64, role domain.Role) (string, error)
	ValidateToken(ctx context.Context, token string) (int64, domain.Role, error)
}

// RateLimitConfig bounds login attempts per email.
type RateLimitConfig struct {
	AttemptsPerMinute int
	Burst             int
}

// Service implements identity business logic: registration, login,
// password changes, and administrative user management.
type Service struct {
	repo    Repository
	auth    Authenticator
	limiter *loginLimiter
}

// NewService creates a new identity service.
func NewService(repo Repository, auth Authenticator, rl RateLimitConfig) *Service {
	if rl.AttemptsPerMinute <= 0 {
		rl.AttemptsPerMinute = 10
	}
	if rl.Burst <= 0 {
		rl.Burst = 5
	}
	return &Service{
		repo:    repo,
		auth:    auth,
		limiter: newLoginLimiter(rl.AttemptsPerMinute, rl.Burst),
	}
}

// RegisterInput holds data for self-registration.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Address  string
}

// Register creates a NORMAL_USER account and issues a token for it.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*domain.User, string, error) {
	user, err := s.createUser(ctx, input.Name, input.Email, input.Password, input.Address, domain.RoleNormalUser)
	if err != nil {
		return nil, "", err
	}

	token, err := s.auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	return user, token, nil
}

// LoginInput holds credentials for login.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, input LoginInput) (*domain.User, string, error) {
	if !s.limiter.allow(input.Email) {
		metrics.LoginAttempts.WithLabelValues("throttled").Inc()
		return nil, "", ErrTooManyAttempts
	}

	user, err := s.repo.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			metrics.LoginAttempts.WithLabelValues("failure").Inc()
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("get user by email: %w", err)
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.auth.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", fmt.Errorf("generate token: %w", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	return user, token, nil
}

// ChangePassword verifies the current password and replaces it.
func (s *Service) ChangePassword(ctx context.Context, userID int64, current, newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if !CheckPassword(current, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, hash)
}

// CreateUserInput holds data for administrative user creation.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Address  string
	Role     domain.Role
}

// CreateUser creates a user with an explicit role. Admin operation.
func (s *Service) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	if !input.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	return s.createUser(ctx, input.Name, input.Email, input.Password, input.Address, input.Role)
}

func (s *Service) createUser(ctx context.Context, name, email, password, address string, role domain.Role) (*domain.User, error) {
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("check existing email: %w", err)
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Address:      address,
		Role:         role,
	}

	// The unique constraint on email is the source of truth; the lookup
	// above only produces a friendlier error for the common case.
	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUserByID returns the full user record. Used by /me.
func (s *Service) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// GetUserSummary returns the administrative projection of a user,
// including the store rating for store owners.
func (s *Service) GetUserSummary(ctx context.Context, id int64) (*UserSummary, error) {
	return s.repo.GetUserSummary(ctx, id)
}

// ListUsers returns users matching the filter. Admin operation.
func (s *Service) ListUsers(ctx context.Context, filter UserFilter) ([]UserSummary, error) {
	if filter.Role != "" && !filter.Role.IsValid() {
		return nil, ErrInvalidRole
	}
	return s.repo.ListUsers(ctx, filter)
}

// PlatformStats returns platform-wide totals. Admin operation.
func (s *Service) PlatformStats(ctx context.Context) (*Stats, error) {
	return s.repo.PlatformStats(ctx)
}

// ValidateToken verifies a bearer token and returns its claim.
// Satisfies httputil.TokenValidator.
func (s *Service) ValidateToken(ctx context.Context, token string) (int64, domain.Role, error) {
	return s.auth.ValidateToken(ctx, token)
}
