package metadata

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags an Error with the category that decides how it is surfaced.
type Kind string

const (
	KindConfig     Kind = "CONFIG"
	KindNotFound   Kind = "NOT_FOUND"
	KindValidation Kind = "VALIDATION_FAILED"
	KindCSRF       Kind = "CSRF_FAILED"
	KindDatabase   Kind = "DATABASE_ERROR"
	KindAction     Kind = "ACTION_FAILED"
)

// Fatal is true for errors that must stop the process from serving traffic.
func (k Kind) Fatal() bool {
	return k == KindConfig
}

// ErrRecordNotFound is returned by Database implementations when a lookup,
// update or delete by id matches no row.
var ErrRecordNotFound = errors.New("record not found")

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the tagged error used across the admin panel.
type Error struct {
	Kind    Kind
	Message string
	Fields  []FieldError
	Err     error
}

func (e *Error) Error() string {
	if len(e.Fields) > 0 {
		parts := make([]string, len(e.Fields))
		for i, f := range e.Fields {
			parts[i] = f.Message
		}
		return e.Message + ": " + strings.Join(parts, "; ")
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// IsFatal reports whether err carries an *Error whose kind must stop the
// process.
func IsFatal(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind.Fatal()
}

// IsKind reports whether err carries an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

func ConfigError(format string, args ...any) *Error {
	return &Error{Kind: KindConfig, Message: fmt.Sprintf(format, args...)}
}

func NotFoundError(displayName, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Message: fmt.Sprintf("%s not found.", displayName),
		Err:     fmt.Errorf("id %s: %w", id, ErrRecordNotFound),
	}
}

func ValidationError(fields []FieldError) *Error {
	return &Error{Kind: KindValidation, Message: "Validation failed", Fields: fields}
}

func CSRFError(err error) *Error {
	return &Error{
		Kind:    KindCSRF,
		Message: "Invalid or expired form token. Please try again.",
		Err:     err,
	}
}

func DatabaseError(err error) *Error {
	return &Error{Kind: KindDatabase, Message: err.Error(), Err: err}
}

func ActionError(err error) *Error {
	return &Error{Kind: KindAction, Message: err.Error(), Err: err}
}
