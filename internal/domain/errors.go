package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound covers both missing rows and rows hidden from the caller.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized is returned for every failed admin check, whatever the reason.
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError reports input rejected before any write.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Invalid builds a ValidationError.
func Invalid(field, msg string) error {
	return &ValidationError{Field: field, Msg: msg}
}

// IsValidation reports whether err wraps a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
