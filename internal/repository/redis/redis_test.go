package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/msomdec/contacts-api/internal/domain"
	repo "github.com/msomdec/contacts-api/internal/repository/redis"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Verify that *repo.DB implements domain.Database at compile time.
var _ domain.Database = (*repo.DB)(nil)

func setupTestDB(t *testing.T) (*repo.DB, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	db := repo.NewFromClient(client)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.Migrate(context.Background()))
	return db, mr
}

func TestNew(t *testing.T) {
	mr := miniredis.RunT(t)

	db, err := repo.New(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	defer db.Close()

	assert.NoError(t, db.Ping(context.Background()))
}

func TestNew_Unreachable(t *testing.T) {
	_, err := repo.New(context.Background(), "redis://127.0.0.1:1/0")
	assert.Error(t, err)
}

func TestUserRepository_CreateAndLookup(t *testing.T) {
	db, _ := setupTestDB(t)
	users := db.Users()
	ctx := context.Background()

	user := &domain.User{Email: "r@example.com", PasswordHash: "hash", VerificationToken: "tok"}
	require.NoError(t, users.Create(ctx, user))
	assert.NotEmpty(t, user.ID)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Equal(t, domain.SubscriptionStarter, user.Subscription)

	byID, err := users.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "r@example.com", byID.Email)

	byEmail, err := users.GetByEmail(ctx, "r@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	byToken, err := users.GetByVerificationToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byToken.ID)

	_, err = users.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = users.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUserRepository_Create_DuplicateEmail(t *testing.T) {
	db, _ := setupTestDB(t)
	users := db.Users()
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &domain.User{Email: "dup@example.com", PasswordHash: "a"}))

	err := users.Create(ctx, &domain.User{Email: "dup@example.com", PasswordHash: "b"})
	assert.ErrorIs(t, err, domain.ErrDuplicateEmail)
}

func TestUserRepository_Update_ClearsVerificationIndex(t *testing.T) {
	db, mr := setupTestDB(t)
	users := db.Users()
	ctx := context.Background()

	user := &domain.User{Email: "v@example.com", PasswordHash: "hash", VerificationToken: "tok"}
	require.NoError(t, users.Create(ctx, user))

	verified := true
	cleared := ""
	updated, err := users.Update(ctx, user.ID, domain.UserUpdate{Verified: &verified, VerificationToken: &cleared})
	require.NoError(t, err)
	assert.True(t, updated.Verified)
	assert.Empty(t, updated.VerificationToken)

	_, err = users.GetByVerificationToken(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, mr.Exists("contacts-api:user:verification:tok"))
}

func TestUserRepository_Update_SessionToken(t *testing.T) {
	db, _ := setupTestDB(t)
	users := db.Users()
	ctx := context.Background()

	user := &domain.User{Email: "s@example.com", PasswordHash: "hash"}
	require.NoError(t, users.Create(ctx, user))

	token := "session"
	updated, err := users.Update(ctx, user.ID, domain.UserUpdate{SessionToken: &token})
	require.NoError(t, err)
	assert.Equal(t, "session", updated.SessionToken)

	empty := ""
	updated, err = users.Update(ctx, user.ID, domain.UserUpdate{SessionToken: &empty})
	require.NoError(t, err)
	assert.Empty(t, updated.SessionToken)

	_, err = users.Update(ctx, "missing", domain.UserUpdate{SessionToken: &token})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestContactRepository_CRUD(t *testing.T) {
	db, _ := setupTestDB(t)
	contacts := db.Contacts()
	ctx := context.Background()

	list, err := contacts.List(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	ann := &domain.Contact{Name: "Ann", Email: "ann@example.com", Phone: "1"}
	bob := &domain.Contact{Name: "Bob", Email: "bob@example.com", Phone: "2"}
	require.NoError(t, contacts.Create(ctx, ann))
	require.NoError(t, contacts.Create(ctx, bob))

	list, err = contacts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Ann", list[0].Name)
	assert.Equal(t, "Bob", list[1].Name)

	replacement := &domain.Contact{ID: ann.ID, Name: "Anna", Email: "anna@example.com", Phone: "3", Favorite: true}
	require.NoError(t, contacts.Update(ctx, replacement))
	assert.Equal(t, ann.CreatedAt, replacement.CreatedAt)

	got, err := contacts.GetByID(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", got.Name)
	assert.True(t, got.Favorite)

	fav, err := contacts.SetFavorite(ctx, bob.ID, true)
	require.NoError(t, err)
	assert.True(t, fav.Favorite)
	assert.Equal(t, "Bob", fav.Name)

	removed, err := contacts.Delete(ctx, ann.ID)
	require.NoError(t, err)
	assert.Equal(t, "Anna", removed.Name)

	_, err = contacts.GetByID(ctx, ann.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = contacts.Delete(ctx, ann.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = contacts.SetFavorite(ctx, ann.ID, false)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err = contacts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
