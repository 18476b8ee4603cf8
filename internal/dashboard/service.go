package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/raksha-app/raksha/internal/apperr"
)

const maxWelcomeLen = 255

// Service reads and edits the caller's dashboard.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Provision creates the dashboard with the default welcome message.
func (s *Service) Provision(ctx context.Context, userID string) (Data, error) {
	return s.repo.Create(ctx, userID, DefaultWelcome)
}

func (s *Service) Get(ctx context.Context, userID string) (Data, error) {
	d, err := s.repo.Get(ctx, userID)
	return d, notFound(err)
}

// Update applies a partial update; a nil message leaves the record as is.
func (s *Service) Update(ctx context.Context, userID string, welcome *string) (Data, error) {
	if welcome == nil {
		return s.Get(ctx, userID)
	}
	var ve apperr.ValidationError
	ve.MaxLen("welcome_message", *welcome, maxWelcomeLen)
	if err := ve.Err(); err != nil {
		return Data{}, err
	}
	d, err := s.repo.SetWelcome(ctx, userID, *welcome)
	return d, notFound(err)
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("dashboard: %w", apperr.ErrRecordNotFound)
	}
	return err
}
