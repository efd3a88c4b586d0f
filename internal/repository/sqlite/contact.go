package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/contacts-api/internal/domain"
)

const contactColumns = `id, name, email, phone, favorite, created_at, updated_at`

// ContactRepository implements domain.ContactRepository using SQLite.
type ContactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new SQLite-backed ContactRepository.
func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{db: db.SqlDB}
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
	row := r.db.QueryRowContext(ctx, `SELECT `+contactColumns+` FROM contacts WHERE id = ?`, id)
	contact, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("query contact: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	now := time.Now().UTC()
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contacts (id, name, email, phone, favorite, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, contact.Name, contact.Email, contact.Phone, contact.Favorite, now, now,
	)
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}

	contact.ID = id
	contact.CreatedAt = now
	contact.UpdatedAt = now
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	row := r.db.QueryRowContext(ctx,
		`UPDATE contacts SET name = ?, email = ?, phone = ?, favorite = ?, updated_at = ?
		 WHERE id = ? RETURNING `+contactColumns,
		contact.Name, contact.Email, contact.Phone, contact.Favorite, time.Now().UTC(), contact.ID,
	)
	updated, err := scanContact(row)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	*contact = *updated
	return nil
}

func (r *ContactRepository) SetFavorite(ctx context.Context, id string, favorite bool) (*domain.Contact, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE contacts SET favorite = ?, updated_at = ? WHERE id = ? RETURNING `+contactColumns,
		favorite, time.Now().UTC(), id,
	)
	contact, err := scanContact(row)
	if err != nil {
		return nil, fmt.Errorf("update contact favorite: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) (*domain.Contact, error) {
	row := r.db.QueryRowContext(ctx, `DELETE FROM contacts WHERE id = ? RETURNING `+contactColumns, id)
	contact, err := scanContact(row)
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
