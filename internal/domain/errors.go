package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
)

// ErrorKind classifies a failure crossing a component boundary.
// Every error leaving the completion client, the analysis engine, or the
// persistence edge carries exactly one kind; no layer invents ad-hoc
// string errors for its callers.
type ErrorKind string

const (
	KindConfiguration      ErrorKind = "CONFIGURATION"
	KindAuthentication     ErrorKind = "AUTHENTICATION"
	KindRateLimit          ErrorKind = "RATE_LIMIT"
	KindInvalidRequest     ErrorKind = "INVALID_REQUEST"
	KindResponseValidation ErrorKind = "RESPONSE_VALIDATION"
	KindNetwork            ErrorKind = "NETWORK"
	KindNotFound           ErrorKind = "NOT_FOUND"
	KindForbidden          ErrorKind = "FORBIDDEN"
	KindDatabase           ErrorKind = "DATABASE"
	KindUnknown            ErrorKind = "UNKNOWN"
)

func (k ErrorKind) String() string { return string(k) }

func (k ErrorKind) IsValid() bool {
	switch k {
	case KindConfiguration, KindAuthentication, KindRateLimit, KindInvalidRequest,
		KindResponseValidation, KindNetwork, KindNotFound, KindForbidden,
		KindDatabase, KindUnknown:
		return true
	}
	return false
}

// Retryable reports whether a caller may retry after backoff.
func (k ErrorKind) Retryable() bool {
	return k == KindRateLimit || k == KindNetwork
}

// Kinded is implemented by every taxonomy-aware error type.
type Kinded interface {
	error
	ErrorKind() ErrorKind
}

// KindOf extracts the taxonomy kind from an error chain.
// Errors outside the taxonomy classify as KindUnknown.
func KindOf(err error) ErrorKind {
	var k Kinded
	if errors.As(err, &k) {
		return k.ErrorKind()
	}
	return KindUnknown
}

// Rule identifiers carried on FieldError. Transport layers branch on
// these instead of parsing the human-readable message.
const (
	RuleRequired = "required"
	RuleTooLong  = "too_long"
	RuleInvalid  = "invalid"
)

// FieldError describes a validation error for a specific field. Code
// names the violated rule; Message is for logs and error strings only.
type FieldError struct {
	Field   string
	Code    string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
