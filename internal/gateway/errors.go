// internal/gateway/errors.go
package gateway

import (
	"errors"
	"fmt"
)

// Caller errors. None of these ever reach the wire.
var (
	ErrUnknownField        = errors.New("unknown field")
	ErrNotWritable         = errors.New("field is not writable")
	ErrEncodingUnsupported = errors.New("encoding not supported for writes")
	ErrInvalidValue        = errors.New("invalid value")
)

// FieldError ties a caller error to the field name that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("gateway: field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error { return e.Err }

func fieldErr(name string, err error) error {
	return &FieldError{Field: name, Err: err}
}
