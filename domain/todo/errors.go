package todo

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrValidation is returned when a required field is missing or malformed.
	ErrValidation = errors.New("validation failed")

	// ErrNoFields is returned when an update carries nothing to change.
	ErrNoFields = errors.New("no fields to update")

	// ErrNotFound is returned when a todo does not exist.
	ErrNotFound = errors.New("todo not found")
)

// Error codes carried across module boundaries.
const (
	CodeValidation = "validation"
	CodeNoFields   = "no_fields"
	CodeNotFound   = "not_found"
)

// codedError keeps the original message while matching a sentinel with errors.Is.
type codedError struct {
	sentinel error
	msg      string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Unwrap() error { return e.sentinel }

// ValidationError builds an error matching ErrValidation.
func ValidationError(format string, args ...any) error {
	return &codedError{sentinel: ErrValidation, msg: fmt.Sprintf(format, args...)}
}

// ErrorCode returns the wire code for a domain error, or "" for anything else.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrValidation):
		return CodeValidation
	case errors.Is(err, ErrNoFields):
		return CodeNoFields
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	default:
		return ""
	}
}

// ErrorFromCode rebuilds a domain error from its wire code and message.
// It returns nil when code is empty.
func ErrorFromCode(code, msg string) error {
	var sentinel error
	switch code {
	case "":
		return nil
	case CodeValidation:
		sentinel = ErrValidation
	case CodeNoFields:
		sentinel = ErrNoFields
	case CodeNotFound:
		sentinel = ErrNotFound
	default:
		return fmt.Errorf("unknown error code %q: %s", code, msg)
	}
	if msg == "" {
		msg = sentinel.Error()
	}
	return &codedError{sentinel: sentinel, msg: msg}
}

// NormalizeTitle trims title and checks it is 1..MaxTitleLength characters.
func NormalizeTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", ValidationError("title must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return "", ValidationError("title must be at most %d characters", MaxTitleLength)
	}
	return trimmed, nil
}
