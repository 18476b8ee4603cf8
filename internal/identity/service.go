package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/raksha-app/raksha/internal/apperr"
)

const maxUsernameLen = 150

// Service manages the credential store.
type Service struct {
	repo Repository
}

// NewService creates a new identity service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Repository exposes the underlying store for token checks.
func (s *Service) Repository() Repository { return s.repo }

// Register creates a user with a bcrypt-hashed password.
func (s *Service) Register(ctx context.Context, creds Credentials) (User, error) {
	username := strings.TrimSpace(creds.Username)

	var ve apperr.ValidationError
	ve.Required("username", username)
	ve.Required("password", creds.Password)
	ve.MaxLen("username", username, maxUsernameLen)
	if err := ve.Err(); err != nil {
		return User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}

	user := User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			return User{}, apperr.ErrDuplicateAccount
		}
		return User{}, err
	}

	return user, nil
}

// Authenticate checks the password and records the login time. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, creds Credentials) (User, error) {
	user, err := s.repo.FindByUsername(ctx, strings.TrimSpace(creds.Username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return User{}, apperr.ErrInvalidCredentials
		}
		return User{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(creds.Password)); err != nil {
		return User{}, apperr.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	if err := s.repo.TouchLogin(ctx, user.ID, now); err != nil {
		return User{}, fmt.Errorf("record login: %w", err)
	}
	user.LastLogin = &now

	return user, nil
}

// Get loads a user by id.
func (s *Service) Get(ctx context.Context, id string) (User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, fmt.Errorf("user %s: %w", id, apperr.ErrRecordNotFound)
	}
	return user, err
}
