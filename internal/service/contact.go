package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/outreach/internal/domain"
)

// ContactService manages a user's prospects.
type ContactService struct {
	contacts domain.ContactRepository
}

// NewContactService creates a new ContactService.
func NewContactService(contacts domain.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// ContactInput holds the editable fields of a contact.
type ContactInput struct {
	Name     string
	Email    string
	LinkedIn string
}

func (in ContactInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if in.Email != "" && !ValidEmail(strings.TrimSpace(in.Email)) {
		return fmt.Errorf("%w: invalid email address", domain.ErrInvalidInput)
	}
	return nil
}

// Create adds a contact owned by userID.
func (s *ContactService) Create(ctx context.Context, userID string, in ContactInput) (*domain.Contact, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	c := &domain.Contact{
		UserID:   userID,
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		LinkedIn: strings.TrimSpace(in.LinkedIn),
	}
	if err := s.contacts.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return c, nil
}

// List returns the user's contacts, newest first.
func (s *ContactService) List(ctx context.Context, userID string) ([]domain.Contact, error) {
	contacts, err := s.contacts.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Get returns a contact if it belongs to userID.
func (s *ContactService) Get(ctx context.Context, userID, id string) (*domain.Contact, error) {
	c, err := s.contacts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

// Update replaces the editable fields of a contact owned by userID.
func (s *ContactService) Update(ctx context.Context, userID, id string, in ContactInput) (*domain.Contact, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.LinkedIn = strings.TrimSpace(in.LinkedIn)

	if err := s.contacts.Update(ctx, c); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	return c, nil
}

// Delete removes a contact owned by userID.
func (s *ContactService) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}
	if err := s.contacts.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	return nil
}
