package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email in use")
	ErrUnauthorized   = errors.New("not authorized")
	ErrInvalidInput   = errors.New("invalid input")
	ErrMailDelivery   = errors.New("verification email could not be sent")

	// ErrInvalidToken is returned for any bearer token that fails verification.
	// It matches ErrUnauthorized under errors.Is.
	ErrInvalidToken = fmt.Errorf("%w: invalid token", ErrUnauthorized)
)
