package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrApplicationNotFound  = errors.New("application not found")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrForbidden            = errors.New("access forbidden")

	ErrRoleUndetermined   = errors.New("role could not be determined")
	ErrNotAuthorized      = errors.New("not authorized as service provider")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidOTP         = errors.New("invalid one-time passcode")
	ErrOTPExpired         = errors.New("one-time passcode expired or not requested")
)

// ValidationError reports a single missing or malformed input field. It is
// raised before any side effect.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// NewValidationError returns a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// StorageError wraps a failure of an external store (application, profile,
// identity or document store). It is surfaced to the caller and never retried.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// NewStorageError wraps err unless it is nil or already a domain condition
// callers branch on.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	for _, known := range []error{ErrApplicationNotFound, ErrProfileNotFound, ErrUserNotFound, ErrUserExists} {
		if errors.Is(err, known) {
			return err
		}
	}
	return &StorageError{Op: op, Err: err}
}
