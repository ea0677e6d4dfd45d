package store

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing rows and rows owned by another user
	ErrNotFound = errors.New("not found")

	ErrEmailTaken = errors.New("a user with this email already exists")

	// ErrInvalidCredentials is returned for unknown email, wrong password or inactive user alike
	ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")
)

// ValidationError rejects a value the caller supplied
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
