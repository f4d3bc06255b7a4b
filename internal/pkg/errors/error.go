package xerrors

import (
	"errors"
	"fmt"
)

// Application error taxonomy. Services wrap these; handlers map them to status codes.
var (
	ErrValidation         = errors.New("validation failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrWeakPassword       = errors.New("new password must be at least 6 characters")
	ErrNotFound           = errors.New("resource not found")
	ErrConflict           = errors.New("conflict")
	ErrRateLimited        = errors.New("too many requests")
	ErrInternal           = errors.New("internal server error")
)

// Wrap adds context to an error (similar to fmt.Errorf("%w")).
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Validation returns an ErrValidation carrying a client-facing message.
func Validation(message string) error {
	return fmt.Errorf("%s: %w", message, ErrValidation)
}

// NotFound returns an ErrNotFound naming the missing resource, e.g. "Customer not found".
func NotFound(resource string) error {
	return fmt.Errorf("%s not found: %w", resource, ErrNotFound)
}

// Conflict returns an ErrConflict with a client-facing message.
func Conflict(message string) error {
	return fmt.Errorf("%s: %w", message, ErrConflict)
}

// Is allows checking whether an error is a specific sentinel error.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// Unwrap extracts the underlying wrapped error.
func Unwrap(err error) error {
	return errors.Unwrap(err)
}

// MessageOrDefault returns err.Error() or a fallback message if err is nil.
func MessageOrDefault(err error, fallback string) string {
	if err != nil {
		return err.Error()
	}
	return fallback
}
