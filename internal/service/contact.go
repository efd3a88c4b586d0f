package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/contacts-api/internal/domain"
)

// ContactInput is the full contact payload accepted by Create and Update.
// Favorite is a pointer so a missing field can be told apart from false.
type ContactInput struct {
	Name     string
	Email    string
	Phone    string
	Favorite *bool
}

func (in ContactInput) validate() error {
	switch {
	case strings.TrimSpace(in.Name) == "":
		return fmt.Errorf("%w: missing required name field", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Email) == "":
		return fmt.Errorf("%w: missing required email field", domain.ErrInvalidInput)
	case strings.TrimSpace(in.Phone) == "":
		return fmt.Errorf("%w: missing required phone field", domain.ErrInvalidInput)
	case in.Favorite == nil:
		return fmt.Errorf("%w: missing required favorite field", domain.ErrInvalidInput)
	}
	return nil
}

// ContactService handles the shared contact list.
type ContactService struct {
	contacts domain.ContactRepository
}

// NewContactService creates a new ContactService.
func NewContactService(contacts domain.ContactRepository) *ContactService {
	return &ContactService{contacts: contacts}
}

// List returns every contact.
func (s *ContactService) List(ctx context.Context) ([]domain.Contact, error) {
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, nil
}

// Get returns a contact by ID.
func (s *ContactService) Get(ctx context.Context, id string) (*domain.Contact, error) {
	return s.contacts.GetByID(ctx, id)
}

// Create validates and stores a new contact.
func (s *ContactService) Create(ctx context.Context, in ContactInput) (*domain.Contact, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Favorite: *in.Favorite,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	return contact, nil
}

// Update replaces every field of an existing contact.
func (s *ContactService) Update(ctx context.Context, id string, in ContactInput) (*domain.Contact, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	contact := &domain.Contact{
		ID:       id,
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Favorite: *in.Favorite,
	}
	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, err
	}
	return contact, nil
}

// UpdateFavorite sets only the favorite flag.
func (s *ContactService) UpdateFavorite(ctx context.Context, id string, favorite *bool) (*domain.Contact, error) {
	if favorite == nil {
		return nil, fmt.Errorf("%w: missing field favorite", domain.ErrInvalidInput)
	}
	return s.contacts.SetFavorite(ctx, id, *favorite)
}

// Delete removes a contact and returns it.
func (s *ContactService) Delete(ctx context.Context, id string) (*domain.Contact, error) {
	return s.contacts.Delete(ctx, id)
}
