package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/phrazzld/studytrack-api/internal/domain"
	"github.com/phrazzld/studytrack-api/internal/platform/logger"
	"github.com/phrazzld/studytrack-api/internal/service/auth"
	"github.com/phrazzld/studytrack-api/internal/store"
)

// ErrInvalidCredentials is returned by Authenticate for an unknown email or
// a wrong password, without telling the two apart.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserService registers and authenticates accounts.
type UserService interface {
	// Register validates and hashes the password and stores the account.
	// Returns store.ErrEmailExists for a taken email.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate returns the account whose password matches.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	Get(ctx context.Context, userID int64) (*domain.User, error)
}

type userService struct {
	users    store.UserStore
	hasher   auth.PasswordHasher
	verifier auth.PasswordVerifier
	clock    Clock
	logger   *slog.Logger
}

// NewUserService creates a UserService.
func NewUserService(
	users store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	clock Clock,
	logger *slog.Logger,
) UserService {
	if users == nil || hasher == nil || verifier == nil {
		panic("user service requires a store, hasher and verifier")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		users:    users,
		hasher:   hasher,
		verifier: verifier,
		clock:    clock,
		logger:   logger.With(slog.String("component", "user_service")),
	}
}

// Register implements UserService.
func (s *userService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := domain.NewUser(email, password, s.clock.now())
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(user.Password)
	if err != nil {
		return nil, NewServiceError("user", "register", "failed to hash password", err)
	}
	user.HashedPassword = hash
	user.Password = ""

	if err := s.users.Create(ctx, user); err != nil {
		if store.IsDuplicateError(err) {
			return nil, err
		}
		return nil, NewServiceError("user", "register", "failed to create user", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("user registered", slog.Int64("user_id", user.ID))
	return user, nil
}

// Authenticate implements UserService.
func (s *userService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login for unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, NewServiceError("user", "authenticate", "failed to load user", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login with wrong password", slog.Int64("user_id", user.ID))
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Get implements UserService.
func (s *userService) Get(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, err
		}
		return nil, NewServiceError("user", "get", "failed to load user", err)
	}
	return user, nil
}
