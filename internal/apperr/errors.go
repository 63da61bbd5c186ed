// Package apperr defines the error taxonomy shared by the repository,
// controller and outer surfaces.
package apperr

import (
	"errors"
	"fmt"
)

var (
	ErrValidation = errors.New("validation failed")
	ErrWrite      = errors.New("write failed")
	ErrRead       = errors.New("read failed")
)

// ValidationError reports bad user input caught before any store call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validation returns a new ValidationError.
func Validation(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// User-facing notices.
const (
	NoticeWriteFailed = "failed to save note, please try again later"
	NoticeReadFailed  = "failed to load notes, please try again later"
	NoticeGeneric     = "something went wrong, please try again later"
)

// Notice converts err into the message shown to the user.
func Notice(err error) string {
	var ve *ValidationError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, ErrWrite):
		return NoticeWriteFailed
	case errors.Is(err, ErrRead):
		return NoticeReadFailed
	default:
		return NoticeGeneric
	}
}
