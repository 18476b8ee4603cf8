package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raksha-app/raksha/internal/apperr"
	"github.com/raksha-app/raksha/internal/config"
	"github.com/raksha-app/raksha/internal/identity"
)

// Service issues and validates access tokens. A token is only honoured
// while its version matches the user's stored token version.
type Service struct {
	secret []byte
	ttl    time.Duration
	idRepo identity.Repository
}

func NewService(cfg config.Config, idRepo identity.Repository) *Service {
	return &Service{secret: []byte(cfg.JWTSecret), ttl: cfg.AccessTokenTTL, idRepo: idRepo}
}

// Token is a signed access token.
type Token struct {
	AccessToken string
	ExpiresIn   int64
}

// Issue signs an access token for user.
func (s *Service) Issue(user identity.User) (Token, error) {
	signed, err := signHS256(s.secret, user.ID, user.TokenVersion, time.Now(), s.ttl)
	if err != nil {
		return Token{}, fmt.Errorf("sign token: %w", err)
	}
	return Token{AccessToken: signed, ExpiresIn: int64(s.ttl.Seconds())}, nil
}

// Authenticate resolves a raw token to its user, rejecting tokens whose
// version was bumped by Logout.
func (s *Service) Authenticate(ctx context.Context, raw string) (identity.User, error) {
	claims, err := parseHS256(s.secret, raw)
	if err != nil {
		return identity.User{}, fmt.Errorf("%w: %v", apperr.ErrUnauthorized, err)
	}
	user, err := s.idRepo.FindByID(ctx, claims.Subject)
	if err != nil {
		return identity.User{}, fmt.Errorf("%w: user not found", apperr.ErrUnauthorized)
	}
	if user.TokenVersion != claims.Version {
		return identity.User{}, fmt.Errorf("%w: token invalidated", apperr.ErrUnauthorized)
	}
	return user, nil
}

// Logout increments the token version so older tokens become invalid.
func (s *Service) Logout(ctx context.Context, userID string) error {
	user, err := s.idRepo.FindByID(ctx, userID)
	if err == nil {
		err = s.idRepo.UpdateTokenVersion(ctx, user.ID, user.TokenVersion+1)
	}
	if errors.Is(err, identity.ErrUserNotFound) {
		return fmt.Errorf("%w: user not found", apperr.ErrUnauthorized)
	}
	return err
}
