package domain

import (
	"context"
	"time"
)

// Subscription is the plan tier a user is on.
type Subscription string

const (
	SubscriptionStarter  Subscription = "starter"
	SubscriptionPro      Subscription = "pro"
	SubscriptionBusiness Subscription = "business"
)

// Valid reports whether s is one of the known tiers.
func (s Subscription) Valid() bool {
	switch s {
	case SubscriptionStarter, SubscriptionPro, SubscriptionBusiness:
		return true
	}
	return false
}

// User represents a registered account.
// SessionToken is empty when the user has no active session.
type User struct {
	ID                string
	Email             string
	PasswordHash      string
	Subscription      Subscription
	SessionToken      string
	Verified          bool
	VerificationToken string
	AvatarURL         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// UserUpdate is a partial update applied by UserRepository.Update.
// Nil fields are left untouched.
type UserUpdate struct {
	SessionToken      *string
	Verified          *bool
	VerificationToken *string
	AvatarURL         *string
	Subscription      *Subscription
}

// IsEmpty reports whether the update changes nothing.
func (u UserUpdate) IsEmpty() bool {
	return u.SessionToken == nil && u.Verified == nil && u.VerificationToken == nil &&
		u.AvatarURL == nil && u.Subscription == nil
}

// Apply copies the set fields of u onto user.
func (u UserUpdate) Apply(user *User) {
	if u.SessionToken != nil {
		user.SessionToken = *u.SessionToken
	}
	if u.Verified != nil {
		user.Verified = *u.Verified
	}
	if u.VerificationToken != nil {
		user.VerificationToken = *u.VerificationToken
	}
	if u.AvatarURL != nil {
		user.AvatarURL = *u.AvatarURL
	}
	if u.Subscription != nil {
		user.Subscription = *u.Subscription
	}
}

// UserRepository defines persistence operations for users.
// Create must assign ID and timestamps and return ErrDuplicateEmail when the
// email is taken. Lookups and Update return ErrNotFound for unknown users.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*User, error)
}
