package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/msomdec/contacts-api/internal/domain"
)

const contactColumns = `id, name, email, phone, favorite, created_at, updated_at`

// ContactRepository implements domain.ContactRepository on Postgres.
type ContactRepository struct {
	db *sql.DB
}

func (r *ContactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("query contacts: %w", err)
	}
	defer rows.Close()

	contacts := []domain.Contact{}
	for rows.Next() {
		var c domain.Contact
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Favorite, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	contact, err := scanContact(r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("query contact: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO contacts (id, name, email, phone, favorite)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		uuid.NewString(), contact.Name, contact.Email, contact.Phone, contact.Favorite,
	).Scan(&contact.ID, &contact.CreatedAt, &contact.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	if !validID(contact.ID) {
		return domain.ErrNotFound
	}
	updated, err := scanContact(r.db.QueryRowContext(ctx,
		`UPDATE contacts SET name = $1, email = $2, phone = $3, favorite = $4, updated_at = now()
		 WHERE id = $5 RETURNING `+contactColumns,
		contact.Name, contact.Email, contact.Phone, contact.Favorite, contact.ID,
	))
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	*contact = *updated
	return nil
}

func (r *ContactRepository) SetFavorite(ctx context.Context, id string, favorite bool) (*domain.Contact, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	contact, err := scanContact(r.db.QueryRowContext(ctx,
		`UPDATE contacts SET favorite = $1, updated_at = now() WHERE id = $2 RETURNING `+contactColumns,
		favorite, id,
	))
	if err != nil {
		return nil, fmt.Errorf("update contact favorite: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) (*domain.Contact, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	contact, err := scanContact(r.db.QueryRowContext(ctx,
		`DELETE FROM contacts WHERE id = $1 RETURNING `+contactColumns, id))
	if err != nil {
		return nil, fmt.Errorf("delete contact: %w", err)
	}
	return contact, nil
}

func scanContact(row *sql.Row) (*domain.Contact, error) {
	c := &domain.Contact{}
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Favorite, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}
