package contacts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/raksha-app/raksha/internal/apperr"
)

const (
	maxNameLen  = 100
	maxPhoneLen = 15
)

// ErrInvalidID is returned for ids that are not UUIDs.
var ErrInvalidID = fmt.Errorf("invalid contact id: %w", apperr.ErrInvalidInput)

// Service manages a user's emergency contacts.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the caller's contacts, oldest first.
func (s *Service) List(ctx context.Context, userID string) ([]Contact, error) {
	return s.repo.ListByUser(ctx, userID)
}

// Create validates and stores a new contact owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in Input) (Contact, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.PhoneNumber = strings.TrimSpace(in.PhoneNumber)

	var ve apperr.ValidationError
	ve.Required("name", in.Name)
	ve.Required("phone_number", in.PhoneNumber)
	ve.MaxLen("name", in.Name, maxNameLen)
	ve.MaxLen("phone_number", in.PhoneNumber, maxPhoneLen)
	if err := ve.Err(); err != nil {
		return Contact{}, err
	}

	c := Contact{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        in.Name,
		PhoneNumber: in.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return Contact{}, err
	}
	return c, nil
}

// Get returns one of the caller's contacts.
func (s *Service) Get(ctx context.Context, userID, id string) (Contact, error) {
	if err := validateID(id); err != nil {
		return Contact{}, err
	}
	c, err := s.repo.Get(ctx, userID, id)
	return c, notFound(err)
}

// Update applies the non-nil fields of patch.
func (s *Service) Update(ctx context.Context, userID, id string, patch Patch) (Contact, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return Contact{}, err
	}

	var ve apperr.ValidationError
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
		ve.Required("name", c.Name)
		ve.MaxLen("name", c.Name, maxNameLen)
	}
	if patch.PhoneNumber != nil {
		c.PhoneNumber = strings.TrimSpace(*patch.PhoneNumber)
		ve.Required("phone_number", c.PhoneNumber)
		ve.MaxLen("phone_number", c.PhoneNumber, maxPhoneLen)
	}
	if err := ve.Err(); err != nil {
		return Contact{}, err
	}

	if err := s.repo.Update(ctx, c); err != nil {
		return Contact{}, notFound(err)
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return notFound(s.repo.Delete(ctx, userID, id))
}

func validateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("contact: %w", apperr.ErrRecordNotFound)
	}
	return err
}
