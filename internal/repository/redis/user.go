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

type userDoc struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	PasswordHash      string    `json:"passwordHash"`
	Subscription      string    `json:"subscription"`
	SessionToken      string    `json:"sessionToken,omitempty"`
	Verified          bool      `json:"verified"`
	VerificationToken string    `json:"verificationToken"`
	AvatarURL         string    `json:"avatarURL"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

func (d userDoc) toDomain() *domain.User {
	return &domain.User{
		ID:                d.ID,
		Email:             d.Email,
		PasswordHash:      d.PasswordHash,
		Subscription:      domain.Subscription(d.Subscription),
		SessionToken:      d.SessionToken,
		Verified:          d.Verified,
		VerificationToken: d.VerificationToken,
		AvatarURL:         d.AvatarURL,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
	}
}

func userDocFrom(u *domain.User) userDoc {
	return userDoc{
		ID:                u.ID,
		Email:             u.Email,
		PasswordHash:      u.PasswordHash,
		Subscription:      string(u.Subscription),
		SessionToken:      u.SessionToken,
		Verified:          u.Verified,
		VerificationToken: u.VerificationToken,
		AvatarURL:         u.AvatarURL,
		CreatedAt:         u.CreatedAt,
		UpdatedAt:         u.UpdatedAt,
	}
}

func userKey(id string) string          { return keyPrefix + "user:" + id }
func userEmailKey(email string) string  { return keyPrefix + "user:email:" + email }
func userVerifyKey(token string) string { return keyPrefix + "user:verification:" + token }

// UserRepository implements domain.UserRepository on Redis.
type UserRepository struct {
	db *DB
}

// Create claims the email index with SETNX before writing the document, so
// two registrations for the same email cannot both succeed.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	client := r.db.client
	id := uuid.NewString()

	claimed, err := client.SetNX(ctx, userEmailKey(user.Email), id, 0).Result()
	if err != nil {
		return fmt.Errorf("claim email: %w", err)
	}
	if !claimed {
		return domain.ErrDuplicateEmail
	}

	now := time.Now().UTC()
	created := *user
	created.ID = id
	created.CreatedAt = now
	created.UpdatedAt = now
	if created.Subscription == "" {
		created.Subscription = domain.SubscriptionStarter
	}

	data, err := json.Marshal(userDocFrom(&created))
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	_, err = client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, userKey(id), data, 0)
		if created.VerificationToken != "" {
			pipe.Set(ctx, userVerifyKey(created.VerificationToken), id, 0)
		}
		return nil
	})
	if err != nil {
		client.Del(ctx, userEmailKey(user.Email))
		return fmt.Errorf("insert user: %w", err)
	}

	*user = created
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := getUser(ctx, r.db.client, id)
	if err != nil {
		return nil, fmt.Errorf("get user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.getByIndex(ctx, userEmailKey(email))
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	user, err := r.getByIndex(ctx, userVerifyKey(token))
	if err != nil {
		return nil, fmt.Errorf("get user by verification token: %w", err)
	}
	return user, nil
}

// Update applies update under WATCH on the user document and keeps the
// verification-token index in step with the document.
func (r *UserRepository) Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	var result *domain.User
	err := r.db.watch(ctx, func(tx *redis.Tx) error {
		user, err := getUser(ctx, tx, id)
		if err != nil {
			return err
		}
		oldToken := user.VerificationToken

		update.Apply(user)
		user.UpdatedAt = time.Now().UTC()

		data, err := json.Marshal(userDocFrom(user))
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, userKey(id), data, 0)
			if oldToken != user.VerificationToken {
				if oldToken != "" {
					pipe.Del(ctx, userVerifyKey(oldToken))
				}
				if user.VerificationToken != "" {
					pipe.Set(ctx, userVerifyKey(user.VerificationToken), id, 0)
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
		result = user
		return nil
	}, userKey(id))
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return result, nil
}

func (r *UserRepository) getByIndex(ctx context.Context, indexKey string) (*domain.User, error) {
	id, err := r.db.client.Get(ctx, indexKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return getUser(ctx, r.db.client, id)
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getUser(ctx context.Context, c getter, id string) (*domain.User, error) {
	data, err := c.Get(ctx, userKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var doc userDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return doc.toDomain(), nil
}
