package service

import "errors"

// Error kinds.  Handlers map these to HTTP statuses; every kind is terminal
// for the request and never retried.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
)

// FieldError attaches a field name and client-facing message to an error
// kind.  errors.Is(err, ErrValidation) holds for validation FieldErrors.
type FieldError struct {
	Kind    error
	Field   string
	Message string
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Message }

func (e *FieldError) Unwrap() error { return e.Kind }

func invalid(field, msg string) error {
	return &FieldError{Kind: ErrValidation, Field: field, Message: msg}
}

func conflict(field, msg string) error {
	return &FieldError{Kind: ErrConflict, Field: field, Message: msg}
}
