package service_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/msomdec/contacts-api/internal/domain"
	"github.com/msomdec/contacts-api/internal/service"
	"github.com/msomdec/contacts-api/internal/storage/disk"
)

type failingStore struct{}

func (failingStore) Put(context.Context, string, string) (string, error) {
	return "", errors.New("storage unavailable")
}

func (failingStore) Remove(context.Context, string) error {
	return errors.New("storage unavailable")
}

func createUser(t *testing.T, users domain.UserRepository, email string) *domain.User {
	t.Helper()
	user := &domain.User{Email: email, PasswordHash: "hash", Subscription: domain.SubscriptionStarter}
	if err := users.Create(context.Background(), user); err != nil {
		t.Fatalf("Create user: %v", err)
	}
	return user
}

func writeTempUpload(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload-123")
	if err := os.WriteFile(path, []byte("\x89PNG\r\n\x1a\n"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestAvatarService_Upload(t *testing.T) {
	db := newTestDB(t)
	dir := filepath.Join(t.TempDir(), "avatars")
	store, err := disk.New(dir)
	if err != nil {
		t.Fatalf("disk.New: %v", err)
	}
	avatars := service.NewAvatarService(db.Users(), store)
	user := createUser(t, db.Users(), "a@example.com")
	temp := writeTempUpload(t)

	url, err := avatars.Upload(context.Background(), user.ID, service.AvatarUpload{
		TempPath:    temp,
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "avatars/"+user.ID+".png" {
		t.Fatalf("unexpected url %s", url)
	}
	if _, err := os.Stat(filepath.Join(dir, user.ID+".png")); err != nil {
		t.Fatalf("expected stored file: %v", err)
	}

	stored, err := db.Users().GetByID(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.AvatarURL != url {
		t.Fatalf("expected avatar url %s, got %s", url, stored.AvatarURL)
	}
}

func TestAvatarService_Upload_ExtensionFromContentType(t *testing.T) {
	db := newTestDB(t)
	store, err := disk.New(t.TempDir())
	if err != nil {
		t.Fatalf("disk.New: %v", err)
	}
	avatars := service.NewAvatarService(db.Users(), store)
	user := createUser(t, db.Users(), "b@example.com")

	tests := []struct {
		contentType, want string
	}{
		{"image/jpeg", ".jpg"},
		{"image/png", ".png"},
		{"image/gif", ".gif"},
		{"image/webp", ".webp"},
	}
	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			url, err := avatars.Upload(context.Background(), user.ID, service.AvatarUpload{
				TempPath:    writeTempUpload(t),
				ContentType: tt.contentType,
			})
			if err != nil {
				t.Fatalf("Upload: %v", err)
			}
			if url != "avatars/"+user.ID+tt.want {
				t.Fatalf("expected extension %s, got url %s", tt.want, url)
			}
		})
	}
}

func TestAvatarService_Upload_RemovesReplacedAvatar(t *testing.T) {
	db := newTestDB(t)
	dir := filepath.Join(t.TempDir(), "avatars")
	store, err := disk.New(dir)
	if err != nil {
		t.Fatalf("disk.New: %v", err)
	}
	avatars := service.NewAvatarService(db.Users(), store)
	user := createUser(t, db.Users(), "r@example.com")

	gravatar := service.GravatarURL(user.Email)
	if _, err := db.Users().Update(context.Background(), user.ID, domain.UserUpdate{AvatarURL: &gravatar}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	upload := func(contentType string) string {
		t.Helper()
		url, err := avatars.Upload(context.Background(), user.ID, service.AvatarUpload{
			TempPath:    writeTempUpload(t),
			ContentType: contentType,
		})
		if err != nil {
			t.Fatalf("Upload %s: %v", contentType, err)
		}
		return url
	}

	first := upload("image/png")
	if _, err := os.Stat(filepath.Join(dir, user.ID+".png")); err != nil {
		t.Fatalf("expected png avatar: %v", err)
	}

	second := upload("image/gif")
	if first == second {
		t.Fatalf("expected a new url, got %s twice", first)
	}
	if _, err := os.Stat(filepath.Join(dir, user.ID+".png")); !os.IsNotExist(err) {
		t.Fatalf("expected replaced png to be removed, stat err=%v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, user.ID+".gif")); err != nil {
		t.Fatalf("expected gif avatar: %v", err)
	}

	// Same type again keeps the file in place.
	upload("image/gif")
	if _, err := os.Stat(filepath.Join(dir, user.ID+".gif")); err != nil {
		t.Fatalf("expected gif avatar after re-upload: %v", err)
	}
}

func TestAvatarService_Upload_RemovesTempOnFailure(t *testing.T) {
	db := newTestDB(t)
	user := createUser(t, db.Users(), "c@example.com")

	t.Run("store fails", func(t *testing.T) {
		avatars := service.NewAvatarService(db.Users(), failingStore{})
		temp := writeTempUpload(t)

		_, err := avatars.Upload(context.Background(), user.ID, service.AvatarUpload{
			TempPath: temp, ContentType: "image/png",
		})
		if err == nil {
			t.Fatal("expected error")
		}
		if _, err := os.Stat(temp); !os.IsNotExist(err) {
			t.Fatalf("expected temp file removed, stat err=%v", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		store, err := disk.New(t.TempDir())
		if err != nil {
			t.Fatalf("disk.New: %v", err)
		}
		avatars := service.NewAvatarService(db.Users(), store)
		temp := writeTempUpload(t)

		_, err = avatars.Upload(context.Background(), user.ID, service.AvatarUpload{
			TempPath: temp, ContentType: "text/plain",
		})
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
		if _, err := os.Stat(temp); !os.IsNotExist(err) {
			t.Fatalf("expected temp file removed, stat err=%v", err)
		}
	})

	t.Run("user missing", func(t *testing.T) {
		store, err := disk.New(t.TempDir())
		if err != nil {
			t.Fatalf("disk.New: %v", err)
		}
		avatars := service.NewAvatarService(db.Users(), store)

		_, err = avatars.Upload(context.Background(), "no-such-user", service.AvatarUpload{
			TempPath: writeTempUpload(t), ContentType: "image/png",
		})
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}
