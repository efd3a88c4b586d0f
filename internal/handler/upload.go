package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"

	"github.com/msomdec/contacts-api/internal/domain"
	"github.com/msomdec/contacts-api/internal/service"
)

// multipartOverhead leaves room for boundaries and part headers on top of
// the file size limit.
const multipartOverhead = 64 << 10

const sniffLen = 512

// uploadAcceptor streams one multipart file field into a temp file after
// checking its sniffed content type and size.
type uploadAcceptor struct {
	field    string
	tempDir  string
	maxBytes int64
	allowed  map[string]string
}

// accept returns the accepted upload. Client mistakes wrap
// domain.ErrInvalidInput; the temp file never outlives an error.
func (a *uploadAcceptor) accept(w http.ResponseWriter, r *http.Request) (service.AvatarUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxBytes+multipartOverhead)

	mr, err := r.MultipartReader()
	if err != nil {
		return service.AvatarUpload{}, fmt.Errorf("%w: expected multipart/form-data body", domain.ErrInvalidInput)
	}

	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			return service.AvatarUpload{}, fmt.Errorf("%w: missing %s file", domain.ErrInvalidInput, a.field)
		}
		if err != nil {
			return service.AvatarUpload{}, fmt.Errorf("%w: malformed multipart body", domain.ErrInvalidInput)
		}
		if part.FormName() != a.field || part.FileName() == "" {
			part.Close()
			continue
		}

		upload, err := a.store(part)
		part.Close()
		return upload, err
	}
}

func (a *uploadAcceptor) store(part *multipart.Part) (service.AvatarUpload, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(part, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return service.AvatarUpload{}, readError(err)
	}
	head = head[:n]
	if n == 0 {
		return service.AvatarUpload{}, fmt.Errorf("%w: %s file is empty", domain.ErrInvalidInput, a.field)
	}

	contentType := http.DetectContentType(head)
	if _, ok := a.allowed[contentType]; !ok {
		return service.AvatarUpload{}, fmt.Errorf("%w: unsupported file type %s", domain.ErrInvalidInput, contentType)
	}

	f, err := os.CreateTemp(a.tempDir, "upload-*")
	if err != nil {
		return service.AvatarUpload{}, fmt.Errorf("create temp file: %w", err)
	}
	path := f.Name()
	fail := func(err error) (service.AvatarUpload, error) {
		f.Close()
		os.Remove(path)
		return service.AvatarUpload{}, err
	}

	if _, err := f.Write(head); err != nil {
		return fail(fmt.Errorf("write temp file: %w", err))
	}
	written, err := io.Copy(f, io.LimitReader(part, a.maxBytes-int64(n)+1))
	if err != nil {
		return fail(readError(err))
	}
	if int64(n)+written > a.maxBytes {
		return fail(fmt.Errorf("%w: file exceeds %d bytes", domain.ErrInvalidInput, a.maxBytes))
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return service.AvatarUpload{}, fmt.Errorf("close temp file: %w", err)
	}

	return service.AvatarUpload{
		TempPath:    path,
		ContentType: contentType,
	}, nil
}

func readError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return fmt.Errorf("%w: request body too large", domain.ErrInvalidInput)
	}
	return fmt.Errorf("%w: could not read upload", domain.ErrInvalidInput)
}
