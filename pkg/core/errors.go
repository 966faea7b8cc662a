package core

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrNotConfigured     = errors.New("no store client configured")
	ErrAlreadyConfigured = errors.New("store client already configured")
	ErrAlreadyPersisted  = errors.New("document already created in the store")
	ErrNotPersisted      = errors.New("document not created in the store yet")
	ErrNotFound          = errors.New("document not found")
	ErrAlreadyExists     = errors.New("document already exists")
	ErrUnknownField      = errors.New("unknown field")
	ErrTypeMismatch      = errors.New("type mismatch")
	ErrInvalidValue      = errors.New("invalid value")
	ErrUnsupportedType   = errors.New("unsupported field type")
)

// FieldError reports a failure tied to one field of a record type.
// It unwraps to one of the sentinel errors above.
type FieldError struct {
	Type  string // record type name, e.g. "User"
	Field string // stored field name
	Err   error
	msg   string
}

// NewFieldError builds a FieldError with an optional detail message.
func NewFieldError(typeName, field string, err error, format string, args ...any) *FieldError {
	fe := &FieldError{Type: typeName, Field: field, Err: err}
	if format != "" {
		fe.msg = fmt.Sprintf(format, args...)
	}
	return fe
}

func (e *FieldError) Error() string {
	s := fmt.Sprintf("%s.%s: %v", e.Type, e.Field, e.Err)
	if e.msg != "" {
		s += ": " + e.msg
	}
	return s
}

func (e *FieldError) Unwrap() error {
	return e.Err
}
