package service

import (
	"bytes"
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/msomdec/contacts-api/internal/domain"
	"github.com/msomdec/contacts-api/internal/view"
)

const minPasswordLength = 6

// RegisterInput is the payload accepted by Register.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput is the payload accepted by Login.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is a freshly issued session and the user it belongs to.
type LoginResult struct {
	Token string
	User  *domain.User
}

// AuthService handles registration, sessions and email verification.
type AuthService struct {
	users   domain.UserRepository
	hasher  *PasswordHasher
	tokens  *TokenIssuer
	mailer  domain.Mailer
	baseURL string
}

// NewAuthService creates a new AuthService. baseURL is the public origin
// used to build verification links.
func NewAuthService(users domain.UserRepository, hasher *PasswordHasher, tokens *TokenIssuer, mailer domain.Mailer, baseURL string) *AuthService {
	return &AuthService{
		users:   users,
		hasher:  hasher,
		tokens:  tokens,
		mailer:  mailer,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Register creates an unverified account and sends the verification email.
// When the email cannot be sent the user is still returned, committed, together
// with an error matching domain.ErrMailDelivery.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is not valid", domain.ErrInvalidInput)
	}
	if len(in.Password) < minPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLength)
	}
	if len(in.Password) > MaxPasswordLength {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, MaxPasswordLength)
	}

	_, err := s.users.GetByEmail(ctx, email)
	if err == nil {
		return nil, domain.ErrDuplicateEmail
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	verificationToken, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("generate verification token: %w", err)
	}

	user := &domain.User{
		Email:             email,
		PasswordHash:      hash,
		Subscription:      domain.SubscriptionStarter,
		VerificationToken: verificationToken,
		AvatarURL:         GravatarURL(email),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, err
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.sendVerification(ctx, user); err != nil {
		return user, err
	}

	return user, nil
}

// Login verifies credentials and starts a new session, replacing any
// previous one. Unknown emails and wrong passwords both return ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(in.Password, user.PasswordHash) {
		return nil, domain.ErrUnauthorized
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	user, err = s.users.Update(ctx, user.ID, domain.UserUpdate{SessionToken: &token})
	if err != nil {
		return nil, fmt.Errorf("store session token: %w", err)
	}

	return &LoginResult{Token: token, User: user}, nil
}

// Logout ends the user's session.
func (s *AuthService) Logout(ctx context.Context, userID string) (*domain.User, error) {
	empty := ""
	user, err := s.users.Update(ctx, userID, domain.UserUpdate{SessionToken: &empty})
	if err != nil {
		return nil, fmt.Errorf("clear session token: %w", err)
	}
	return user, nil
}

// Authenticate resolves a bearer token to its user. The token must verify and
// must be the session token currently stored for that user, so logged-out and
// superseded tokens are rejected even before they expire.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if user.SessionToken == "" || subtle.ConstantTimeCompare([]byte(user.SessionToken), []byte(token)) != 1 {
		return nil, domain.ErrUnauthorized
	}

	return user, nil
}

// Verify marks the owner of verificationToken as verified and clears the
// token so the link cannot be replayed.
func (s *AuthService) Verify(ctx context.Context, verificationToken string) (*domain.User, error) {
	if verificationToken == "" {
		return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
	}

	user, err := s.users.GetByVerificationToken(ctx, verificationToken)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by verification token: %w", err)
	}

	verified := true
	cleared := ""
	user, err = s.users.Update(ctx, user.ID, domain.UserUpdate{
		Verified:          &verified,
		VerificationToken: &cleared,
	})
	if err != nil {
		return nil, fmt.Errorf("mark verified: %w", err)
	}

	slog.Info("email verified", "user_id", user.ID)
	return user, nil
}

// ResendVerification sends the verification email again using the token
// stored at registration. Unknown and already verified users are ErrNotFound.
func (s *AuthService) ResendVerification(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: missing required field email", domain.ErrInvalidInput)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: user not found", domain.ErrNotFound)
		}
		return fmt.Errorf("get user: %w", err)
	}
	if user.Verified {
		return fmt.Errorf("%w: verification has already been passed", domain.ErrNotFound)
	}

	return s.sendVerification(ctx, user)
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *AuthService) sendVerification(ctx context.Context, user *domain.User) error {
	link := s.baseURL + "/auth/verify/" + user.VerificationToken

	var body bytes.Buffer
	if err := view.VerificationEmail(user.Email, link).Render(ctx, &body); err != nil {
		return fmt.Errorf("render verification email: %w", err)
	}

	msg := domain.Message{
		To:      user.Email,
		Subject: view.VerificationEmailSubject,
		HTML:    body.String(),
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		slog.Error("send verification email", "user_id", user.ID, "error", err)
		return fmt.Errorf("%w: %w", domain.ErrMailDelivery, err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
