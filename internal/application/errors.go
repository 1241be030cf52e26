package application

import "errors"

var (
	// ErrForbidden is returned when the acting principal lacks the role or
	// ownership an operation requires.
	ErrForbidden = errors.New("application: forbidden")
	// ErrNotFound is returned when the requested resource does not exist. A
	// missing resource is reported as not found even to callers who would
	// lack permission to see it.
	ErrNotFound = errors.New("application: not found")
	// ErrConflict is returned when a write collides with existing state,
	// such as deleting a catalog entry that packing lists still reference.
	ErrConflict = errors.New("application: conflict")
	// ErrInvalidCredentials is returned for bad login input and malformed
	// bearer tokens.
	ErrInvalidCredentials = errors.New("application: invalid credentials")
	// ErrTokenExpired is returned when a bearer token is past its expiry.
	ErrTokenExpired = errors.New("application: token expired")
	// ErrAccountDisabled is returned when an inactive account authenticates.
	ErrAccountDisabled = errors.New("application: account disabled")
)

// ValidationError captures field level validation issues that callers can
// surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

func newValidationError() *ValidationError {
	return &ValidationError{FieldErrors: make(map[string]string)}
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}
