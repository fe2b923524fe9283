package validy

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for validy. Use errors.Is to check.
//
// Everything except ErrValidation describes a defect in the schema or in the way the engine was
// called, and is returned as the error of Validate. ErrValidation is only ever produced by
// Result.Err for callers that prefer the error form of a failed result.
var (
	ErrSchemaRequired      = errors.New("schema reference is required")
	ErrSchemaNoType        = errors.New("schema has no type")
	ErrUnknownSchema       = errors.New("could not understand the schema provided")
	ErrUnknownPreprocessor = errors.New("unknown preprocessor")
	ErrInvalidName         = errors.New("name is required")
	ErrInvalidFragment     = errors.New("schema fragment is required")
	ErrReservedName        = errors.New("name is reserved for a built-in type")
	ErrDuplicateSchema     = errors.New("schema already exists")
	ErrValidation          = errors.New("validation failed")
)

// SchemaError reports a malformed schema or an unresolvable reference.
// Err wraps one of the sentinels above for errors.Is/errors.As.
type SchemaError struct {
	Reason string
	Err    error
}

func (e *SchemaError) Error() string {
	if e.Reason == "" {
		return "validy: " + e.Err.Error()
	}
	return "validy: " + e.Reason
}

func (e *SchemaError) Unwrap() error { return e.Err }

// IsSchemaError returns true if err is or wraps a SchemaError.
func IsSchemaError(err error) bool {
	var se *SchemaError
	return errors.As(err, &se)
}

// ValidationError is the error form of a failed Result (see Result.Err).
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Errors, "; ")
}

// Unwrap lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func schemaErrorf(sentinel error, format string, args ...any) error {
	return &SchemaError{Reason: fmt.Sprintf(format, args...), Err: sentinel}
}

// panicError wraps a recovered panic value; custom validators report it as a rejection.
type panicError struct{ p any }

func (e *panicError) Error() string {
	return "panic: " + fmt.Sprint(e.p)
}
