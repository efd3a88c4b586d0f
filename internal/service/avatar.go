package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/msomdec/contacts-api/internal/domain"
)

// AllowedAvatarTypes maps accepted sniffed content types to the extension
// avatars of that type are stored under.
var AllowedAvatarTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarUpload describes a file already accepted into temporary storage.
// ContentType is the sniffed type of its content.
type AvatarUpload struct {
	TempPath    string
	ContentType string
}

// AvatarService moves uploaded avatars into permanent storage.
type AvatarService struct {
	users domain.UserRepository
	store domain.AvatarStore
}

// NewAvatarService creates a new AvatarService.
func NewAvatarService(users domain.UserRepository, store domain.AvatarStore) *AvatarService {
	return &AvatarService{users: users, store: store}
}

// Upload stores the accepted file as {userID}{ext}, records the new avatar
// URL on the user and removes the avatar it replaces. The temp file is
// removed on every failure path.
func (s *AvatarService) Upload(ctx context.Context, userID string, upload AvatarUpload) (url string, err error) {
	defer func() {
		if err != nil {
			removeTemp(upload.TempPath)
		}
	}()

	ext, ok := AllowedAvatarTypes[upload.ContentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported avatar type %q", domain.ErrInvalidInput, upload.ContentType)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("get user: %w", err)
	}
	previous := user.AvatarURL

	url, err = s.store.Put(ctx, upload.TempPath, userID+ext)
	if err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}

	if _, err := s.users.Update(ctx, userID, domain.UserUpdate{AvatarURL: &url}); err != nil {
		return "", fmt.Errorf("update avatar url: %w", err)
	}

	if previous != "" && previous != url {
		if err := s.store.Remove(ctx, previous); err != nil {
			slog.Error("remove replaced avatar", "user_id", userID, "url", previous, "error", err)
		}
	}

	return url, nil
}

func removeTemp(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("remove temp upload", "path", path, "error", err)
	}
}
