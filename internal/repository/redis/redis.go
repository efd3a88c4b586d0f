// Package redis stores users and contacts as JSON documents in Redis, with
// secondary index keys for email and verification-token lookups.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/contacts-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "contacts-api:"
	maxTxAttempts = 5
)

// DB wraps a Redis client and hands out repositories bound to it.
type DB struct {
	client *redis.Client
}

// New connects to the Redis server at url (redis://[:password@]host:port/db).
func New(ctx context.Context, url string) (*DB, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return &DB{client: client}, nil
}

// NewFromClient wraps an existing client.
func NewFromClient(client *redis.Client) *DB {
	return &DB{client: client}
}

// Migrate is a no-op: documents carry their own shape.
func (d *DB) Migrate(ctx context.Context) error {
	return nil
}

// Ping checks the connection.
func (d *DB) Ping(ctx context.Context) error {
	return d.client.Ping(ctx).Err()
}

// Close closes the client.
func (d *DB) Close() error {
	return d.client.Close()
}

// Users returns the user repository.
func (d *DB) Users() domain.UserRepository {
	return &UserRepository{db: d}
}

// Contacts returns the contact repository.
func (d *DB) Contacts() domain.ContactRepository {
	return &ContactRepository{db: d}
}

// watch runs fn as an optimistic transaction over keys, retrying when a
// watched key changes underneath it.
func (d *DB) watch(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for range maxTxAttempts {
		err := d.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("transaction on %v aborted after %d attempts", keys, maxTxAttempts)
}
