package domain

import (
	"context"
	"time"
)

// Contact is an entry in the shared address book.
type Contact struct {
	ID        string
	Name      string
	Email     string
	Phone     string
	Favorite  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ContactRepository defines persistence operations for contacts.
// Update replaces name, email, phone and favorite; Delete returns the removed row.
type ContactRepository interface {
	List(ctx context.Context) ([]Contact, error)
	GetByID(ctx context.Context, id string) (*Contact, error)
	Create(ctx context.Context, contact *Contact) error
	Update(ctx context.Context, contact *Contact) error
	SetFavorite(ctx context.Context, id string, favorite bool) (*Contact, error)
	Delete(ctx context.Context, id string) (*Contact, error)
}
