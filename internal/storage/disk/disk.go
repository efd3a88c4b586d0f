package disk

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// URLPrefix is the public path under which the router serves stored avatars.
const URLPrefix = "avatars/"

// Store keeps avatars as plain files in a single directory.
type Store struct {
	dir string
}

// New creates the avatar directory if needed and returns a Store rooted at it.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create avatar dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the directory avatars are written to.
func (s *Store) Dir() string {
	return s.dir
}

// Put moves the temp file into the avatar directory, replacing any previous
// avatar with the same name.
func (s *Store) Put(ctx context.Context, tempPath, filename string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := filepath.Base(filename)
	if err := os.Rename(tempPath, filepath.Join(s.dir, name)); err != nil {
		return "", fmt.Errorf("move avatar: %w", err)
	}
	return URLPrefix + name, nil
}

// Remove deletes the file behind a URL returned by Put. Other URLs and
// already missing files are not an error.
func (s *Store) Remove(ctx context.Context, url string) error {
	name, ok := strings.CutPrefix(url, URLPrefix)
	if !ok || name == "" || name != filepath.Base(name) {
		return nil
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove avatar: %w", err)
	}
	return nil
}
