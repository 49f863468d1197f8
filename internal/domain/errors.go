package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is matches domain errors by code and message so that wrapped copies
// produced by NewDomainErrorWithCause still satisfy errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeUnavailable   = "UNAVAILABLE"
	ErrCodeInternalError = "INTERNAL_ERROR"
)

// Validation errors. These are the only errors a search call returns to its caller.
var (
	ErrInvalidQuery        = NewDomainError(ErrCodeValidation, "query is required")
	ErrInvalidPagination   = NewDomainError(ErrCodeValidation, "invalid pagination parameters")
	ErrInvalidEntityType   = NewDomainError(ErrCodeValidation, "invalid entity type")
	ErrInvalidMode         = NewDomainError(ErrCodeValidation, "invalid search mode")
	ErrMissingOrganization = NewDomainError(ErrCodeValidation, "organization id is required")
	ErrInvalidParameter    = NewDomainError(ErrCodeValidation, "invalid request parameter")
)

// Not found errors
var (
	ErrProviderNotFound = NewDomainError(ErrCodeNotFound, "provider not found")
)

// Validation wraps a validation error with request-specific detail.
func Validation(base *DomainError, detail string) *DomainError {
	return NewDomainErrorWithCause(base.Code, base.Message, errors.New(detail))
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code == ErrCodeValidation
	}
	return false
}

// ProviderError describes a recoverable provider failure. It never reaches
// callers of the search service; it is turned into a warning.
type ProviderError struct {
	Provider string
	Category string
	Timeout  bool
	Err      error
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("provider %s timed out: %v", e.Provider, e.Err)
	}
	return fmt.Sprintf("provider %s failed: %v", e.Provider, e.Err)
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Warning renders the failure for end users. It names the source category
// and never the internal provider name.
func (e *ProviderError) Warning() string {
	category := e.Category
	if category == "" {
		category = "Some"
	}
	if e.Timeout {
		return fmt.Sprintf("%s results took too long to load and were skipped", category)
	}
	return fmt.Sprintf("%s results are temporarily unavailable", category)
}
