package domain

import "context"

// AvatarStore moves accepted uploads into permanent avatar storage.
// The disk implementation renames within the filesystem; the S3
// implementation uploads and then removes the temp file.
type AvatarStore interface {
	// Put moves the file at tempPath to permanent storage under filename
	// and returns the URL or relative path clients should use.
	Put(ctx context.Context, tempPath, filename string) (string, error)
	// Remove deletes the avatar a previous Put returned. URLs the store did
	// not issue, such as gravatar defaults, are ignored.
	Remove(ctx context.Context, url string) error
}
