package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/berea-app/berea/internal/domain"
	"github.com/berea-app/berea/internal/pkg/crypto"
	"github.com/berea-app/berea/internal/repository"
)

// BootstrapUserID is the fixed ID of the bootstrap identity. It lives in
// the same users table as everyone else once provisioned.
const BootstrapUserID = "bootstrap-user"

// BootstrapIdentity describes the configured administrative identity that
// is provisioned lazily on its first successful login.
type BootstrapIdentity struct {
	Username string
	Password string
}

// Enabled reports whether a bootstrap identity is configured.
func (b BootstrapIdentity) Enabled() bool {
	return b.Username != ""
}

// Matches reports whether the given username refers to the bootstrap
// identity. Comparison is case-insensitive, like all username lookups.
func (b BootstrapIdentity) Matches(username string) bool {
	return b.Enabled() && strings.EqualFold(username, b.Username)
}

// UserService handles registration, credential verification and profile
// management.
type UserService struct {
	userRepo  repository.UserRepository
	bootstrap BootstrapIdentity
	logger    zerolog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repository.UserRepository, bootstrap BootstrapIdentity, logger zerolog.Logger) *UserService {
	return &UserService{
		userRepo:  userRepo,
		bootstrap: bootstrap,
		logger:    logger.With().Str("service", "user").Logger(),
	}
}

// RegisterInput contains the data needed to register a new user.
// Profile fields are optional; the ones supplied are set on the new
// account.
type RegisterInput struct {
	Username string
	Password string
	Profile  domain.ProfileUpdate
}

// RegisterOutput contains the result of registering a user.
type RegisterOutput struct {
	User *domain.User
}

// Register creates a new user account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if err := s.validateRegisterInput(input); err != nil {
		return nil, err
	}

	if s.bootstrap.Matches(input.Username) {
		return nil, fmt.Errorf("%w: '%s'", ErrUsernameReserved, input.Username)
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, input.Username)
	if err != nil {
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to check username existence")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	if exists {
		return nil, fmt.Errorf("%w: username '%s'", ErrUserAlreadyExists, input.Username)
	}

	passwordHash, err := crypto.HashPassword(input.Password)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user := domain.NewUser(uuid.NewString(), input.Username, passwordHash)
	user.Apply(input.Profile)

	if err := s.userRepo.Create(ctx, user); err != nil {
		// The unique index closes the race between the existence check
		// and the insert.
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("%w: username '%s'", ErrUserAlreadyExists, input.Username)
		}
		s.logger.Error().Err(err).Str("username", input.Username).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return &RegisterOutput{User: user}, nil
}

// Authenticate verifies user credentials and returns the user.
// The bootstrap identity is checked first and provisioned on its first
// successful login; everyone else goes through the stored hash.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	if s.bootstrap.Matches(username) {
		return s.authenticateBootstrap(ctx, password)
	}

	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Log but don't expose whether the username exists.
			s.logger.Debug().Str("username", username).Msg("user not found during authentication")
			return nil, ErrUserNotFound
		}
		s.logger.Error().Err(err).Str("username", username).Msg("failed to look up user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if !crypto.VerifyPassword(password, user.PasswordHash) {
		s.logger.Debug().Str("username", username).Msg("invalid password during authentication")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user authenticated")

	return user, nil
}

// authenticateBootstrap verifies the configured bootstrap password and
// provisions the identity if it does not exist yet. Provisioning is
// idempotent: a concurrent first login loses the insert race and falls
// back to reading the row the winner created.
func (s *UserService) authenticateBootstrap(ctx context.Context, password string) (*domain.User, error) {
	if !crypto.VerifyPassword(password, s.bootstrap.Password) {
		s.logger.Debug().Msg("invalid bootstrap password")
		return nil, ErrInvalidCredentials
	}

	user, err := s.userRepo.GetByID(ctx, BootstrapUserID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		s.logger.Error().Err(err).Msg("failed to look up bootstrap user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	passwordHash, err := crypto.HashPassword(s.bootstrap.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	user = domain.NewUser(BootstrapUserID, s.bootstrap.Username, passwordHash)
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return s.userRepo.GetByID(ctx, BootstrapUserID)
		}
		s.logger.Error().Err(err).Msg("failed to provision bootstrap user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("bootstrap user provisioned")
	return user, nil
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username (case-insensitive).
func (s *UserService) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return user, nil
}

// UpdateProfile applies a partial profile update and returns the updated
// user. Only fields set in the update are touched.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, update domain.ProfileUpdate) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	user.Apply(update)

	if err := s.userRepo.Update(ctx, user); err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to update profile")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().Str("user_id", userID).Msg("profile updated")
	return user, nil
}

// validateRegisterInput validates registration input.
func (s *UserService) validateRegisterInput(input RegisterInput) error {
	if len(input.Username) < 3 || len(input.Username) > 255 {
		return ErrInvalidUsername
	}
	if len(input.Password) < 6 {
		return ErrInvalidPassword
	}
	return nil
}
