package domain

import (
	"errors"
	"fmt"
)

var (
	ErrBlankField            = errors.New("blank field")
	ErrLengthViolation       = errors.New("length violation")
	ErrInvalidEmail          = errors.New("invalid email address")
	ErrDuplicateUsername     = errors.New("username already taken")
	ErrInvalidInvitationCode = errors.New("invalid invitation code")
	ErrInvalidRole           = errors.New("invalid role")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAdminInviteForbidden  = errors.New("admin invitations are not allowed")
)

// BlankFieldError reports a required field that was empty after trimming.
type BlankFieldError struct {
	Field string
}

func (e *BlankFieldError) Error() string {
	return fmt.Sprintf("%s must not be blank", e.Field)
}

func (e *BlankFieldError) Is(target error) bool { return target == ErrBlankField }

// LengthViolationError reports a field whose rune length falls outside
// [Min, Max].
type LengthViolationError struct {
	Field  string
	Min    int
	Max    int
	Actual int
}

func (e *LengthViolationError) Error() string {
	return fmt.Sprintf("%s must be between %d and %d characters, got %d",
		e.Field, e.Min, e.Max, e.Actual)
}

func (e *LengthViolationError) Is(target error) bool { return target == ErrLengthViolation }
