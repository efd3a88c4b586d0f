package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/msomdec/contacts-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

// contactsIndexKey is a sorted set of contact IDs scored by creation time.
const contactsIndexKey = keyPrefix + "contacts"

type contactDoc struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func contactKey(id string) string { return keyPrefix + "contact:" + id }

// ContactRepository implements domain.ContactRepository on Redis.
type ContactRepository struct {
	db *DB
}

func (r *ContactRepository) List(ctx context.Context) ([]domain.Contact, error) {
	client := r.db.client

	ids, err := client.ZRange(ctx, contactsIndexKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list contact ids: %w", err)
	}

	contacts := []domain.Contact{}
	if len(ids) == 0 {
		return contacts, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = contactKey(id)
	}
	values, err := client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}

	for _, v := range values {
		// A nil entry is a contact deleted between ZRANGE and MGET.
		s, ok := v.(string)
		if !ok {
			continue
		}
		var doc contactDoc
		if err := json.Unmarshal([]byte(s), &doc); err != nil {
			return nil, fmt.Errorf("decode contact: %w", err)
		}
		contacts = append(contacts, domain.Contact(doc))
	}
	return contacts, nil
}

func (r *ContactRepository) GetByID(ctx context.Context, id string) (*domain.Contact, error) {
	contact, err := getContact(ctx, r.db.client, id)
	if err != nil {
		return nil, fmt.Errorf("get contact: %w", err)
	}
	return contact, nil
}

func (r *ContactRepository) Create(ctx context.Context, contact *domain.Contact) error {
	now := time.Now().UTC()
	created := *contact
	created.ID = uuid.NewString()
	created.CreatedAt = now
	created.UpdatedAt = now

	data, err := json.Marshal(contactDoc(created))
	if err != nil {
		return fmt.Errorf("encode contact: %w", err)
	}

	_, err = r.db.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, contactKey(created.ID), data, 0)
		pipe.ZAdd(ctx, contactsIndexKey, redis.Z{Score: float64(now.UnixNano()), Member: created.ID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("insert contact: %w", err)
	}

	*contact = created
	return nil
}

func (r *ContactRepository) Update(ctx context.Context, contact *domain.Contact) error {
	updated, err := r.modify(ctx, contact.ID, func(c *domain.Contact) {
		c.Name = contact.Name
		c.Email = contact.Email
		c.Phone = contact.Phone
		c.Favorite = contact.Favorite
	})
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	*contact = *updated
	return nil
}

func (r *ContactRepository) SetFavorite(ctx context.Context, id string, favorite bool) (*domain.Contact, error) {
	updated, err := r.modify(ctx, id, func(c *domain.Contact) {
		c.Favorite = favorite
	})
	if err != nil {
		return nil, fmt.Errorf("update contact favorite: %w", err)
	}
	return updated, nil
}

func (r *ContactRepository) Delete(ctx context.Context, id string) (*domain.Contact, error) {
	var removed *domain.Contact
	err := r.db.watch(ctx, func(tx *redis.Tx) error {
		contact, err := getContact(ctx, tx, id)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, contactKey(id))
			pipe.ZRem(ctx, contactsIndexKey, id)
			return nil
		})
		if err != nil {
			return err
		}
		removed = contact
		return nil
	}, contactKey(id))
	if err != nil {
		return nil, fmt.Errorf("delete contact: %w", err)
	}
	return removed, nil
}

// modify applies fn to the stored contact under WATCH and writes it back.
func (r *ContactRepository) modify(ctx context.Context, id string, fn func(*domain.Contact)) (*domain.Contact, error) {
	var result *domain.Contact
	err := r.db.watch(ctx, func(tx *redis.Tx) error {
		contact, err := getContact(ctx, tx, id)
		if err != nil {
			return err
		}
		fn(contact)
		contact.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(contactDoc(*contact))
		if err != nil {
			return fmt.Errorf("encode contact: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, contactKey(id), data, 0)
			return nil
		})
		if err != nil {
			return err
		}
		result = contact
		return nil
	}, contactKey(id))
	return result, err
}

func getContact(ctx context.Context, c getter, id string) (*domain.Contact, error) {
	data, err := c.Get(ctx, contactKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var doc contactDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode contact %s: %w", id, err)
	}
	contact := domain.Contact(doc)
	return &contact, nil
}
