package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/msomdec/contacts-api/internal/domain"
)

const userColumns = `id, email, password_hash, subscription, session_token, verified,
	verification_token, avatar_url, created_at, updated_at`

// UserRepository implements domain.UserRepository on Postgres.
type UserRepository struct {
	db *sql.DB
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.Subscription == "" {
		user.Subscription = domain.SubscriptionStarter
	}

	err := r.db.QueryRowContext(ctx,
		`INSERT INTO users (id, email, password_hash, subscription, session_token, verified,
			verification_token, avatar_url)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		uuid.NewString(), user.Email, user.PasswordHash, string(user.Subscription),
		nullString(user.SessionToken), user.Verified, user.VerificationToken, user.AvatarURL,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
	if err != nil {
		return nil, fmt.Errorf("query user by email: %w", err)
	}
	return user, nil
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrNotFound
	}
	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token))
	if err != nil {
		return nil, fmt.Errorf("query user by verification token: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, update domain.UserUpdate) (*domain.User, error) {
	if !validID(id) {
		return nil, domain.ErrNotFound
	}
	if update.IsEmpty() {
		return r.GetByID(ctx, id)
	}

	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, column+" = $"+strconv.Itoa(len(args)))
	}
	if update.SessionToken != nil {
		set("session_token", nullString(*update.SessionToken))
	}
	if update.Verified != nil {
		set("verified", *update.Verified)
	}
	if update.VerificationToken != nil {
		set("verification_token", *update.VerificationToken)
	}
	if update.AvatarURL != nil {
		set("avatar_url", *update.AvatarURL)
	}
	if update.Subscription != nil {
		set("subscription", string(*update.Subscription))
	}
	args = append(args, id)

	query := `UPDATE users SET ` + strings.Join(sets, ", ") + `, updated_at = now()
		WHERE id = $` + strconv.Itoa(len(args)) + ` RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	user := &domain.User{}
	var subscription string
	var sessionToken sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &subscription, &sessionToken,
		&user.Verified, &user.VerificationToken, &user.AvatarURL, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	user.Subscription = domain.Subscription(subscription)
	user.SessionToken = sessionToken.String
	return user, nil
}
