// Package domain holds the error taxonomy shared by services and the HTTP layer.
package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation reports bad client input.
	ErrValidation = errors.New("validation error")
	// ErrUnauthorized reports a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden reports an authenticated caller acting on something it does not own.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound reports a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists reports a uniqueness conflict.
	ErrAlreadyExists = errors.New("already exists")
	// ErrServiceUnavailable reports an integration that is not configured on this server.
	ErrServiceUnavailable = errors.New("service unavailable")
	// ErrAuthentication reports that an upstream service rejected our credential.
	ErrAuthentication = errors.New("upstream authentication failed")
	// ErrUpstream reports any other upstream failure.
	ErrUpstream = errors.New("upstream error")
	// ErrUpstreamFormat reports an upstream response that could not be parsed.
	ErrUpstreamFormat = errors.New("upstream response malformed")
)

// ValidationError describes a single invalid input field.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
