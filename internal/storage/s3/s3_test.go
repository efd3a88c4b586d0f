package s3_test

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/msomdec/contacts-api/internal/domain"
	"github.com/msomdec/contacts-api/internal/storage/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ domain.AvatarStore = (*s3.Store)(nil)

type fakeClient struct {
	bucket, key, contentType string
	body                     []byte
	deleted                  []string
	err                      error
}

func (f *fakeClient) PutObject(_ context.Context, in *awss3.PutObjectInput, _ ...func(*awss3.Options)) (*awss3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.bucket = aws.ToString(in.Bucket)
	f.key = aws.ToString(in.Key)
	f.contentType = aws.ToString(in.ContentType)
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.body = body
	return &awss3.PutObjectOutput{}, nil
}

func (f *fakeClient) DeleteObject(_ context.Context, in *awss3.DeleteObjectInput, _ ...func(*awss3.Options)) (*awss3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &awss3.DeleteObjectOutput{}, nil
}

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "upload.tmp")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestPut_UploadsAndRemovesTemp(t *testing.T) {
	client := &fakeClient{}
	store := s3.NewWithClient(client, "bucket", "https://cdn.example.com/")
	temp := writeTemp(t, "image-bytes")

	url, err := store.Put(context.Background(), temp, "user-1.png")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.com/avatars/user-1.png", url)
	assert.Equal(t, "bucket", client.bucket)
	assert.Equal(t, "avatars/user-1.png", client.key)
	assert.Equal(t, "image/png", client.contentType)
	assert.Equal(t, "image-bytes", string(client.body))

	_, err = os.Stat(temp)
	assert.True(t, os.IsNotExist(err), "temp file should be removed")
}

func TestPut_NoPublicURLReturnsKey(t *testing.T) {
	store := s3.NewWithClient(&fakeClient{}, "bucket", "")

	url, err := store.Put(context.Background(), writeTemp(t, "x"), "u.jpg")
	require.NoError(t, err)
	assert.Equal(t, "avatars/u.jpg", url)
}

func TestPut_ClientErrorKeepsTemp(t *testing.T) {
	store := s3.NewWithClient(&fakeClient{err: errors.New("boom")}, "bucket", "")
	temp := writeTemp(t, "x")

	_, err := store.Put(context.Background(), temp, "u.jpg")
	require.Error(t, err)

	_, statErr := os.Stat(temp)
	assert.NoError(t, statErr, "caller owns temp cleanup on failure")
}

func TestRemove_DeletesOwnedObject(t *testing.T) {
	client := &fakeClient{}
	store := s3.NewWithClient(client, "bucket", "https://cdn.example.com")

	require.NoError(t, store.Remove(context.Background(), "https://cdn.example.com/avatars/user-1.png"))
	assert.Equal(t, []string{"avatars/user-1.png"}, client.deleted)

	bare := &fakeClient{}
	require.NoError(t, s3.NewWithClient(bare, "bucket", "").Remove(context.Background(), "avatars/u.jpg"))
	assert.Equal(t, []string{"avatars/u.jpg"}, bare.deleted)
}

func TestRemove_IgnoresForeignURLs(t *testing.T) {
	client := &fakeClient{}
	store := s3.NewWithClient(client, "bucket", "https://cdn.example.com")

	for _, url := range []string{
		"https://www.gravatar.com/avatar/abc?s=200&r=pg&d=mm",
		"https://other.example.com/avatars/user-1.png",
		"https://cdn.example.com/avatars/",
		"",
	} {
		require.NoError(t, store.Remove(context.Background(), url), url)
	}
	assert.Empty(t, client.deleted)
}

func TestRemove_ClientError(t *testing.T) {
	store := s3.NewWithClient(&fakeClient{err: errors.New("boom")}, "bucket", "")
	assert.Error(t, store.Remove(context.Background(), "avatars/u.jpg"))
}

func TestNew_RequiresBucket(t *testing.T) {
	_, err := s3.New(context.Background(), s3.Config{Region: "us-east-1"})
	assert.Error(t, err)
}
