package domain

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every layer. Transports map these with errors.Is.
var (
	// ErrInvalidInput marks a rejected request; nothing was mutated.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound marks an id absent from the current base dataset.
	ErrNotFound = errors.New("not found")
	// ErrUpstreamUnavailable marks a failed record source fetch.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	// ErrAssistantUnavailable marks a disabled or failing assistant.
	ErrAssistantUnavailable = errors.New("assistant unavailable")
)

// ValidationError describes which input field was rejected.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is(err, ErrInvalidInput) match.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// UpstreamError wraps a record source failure as ErrUpstreamUnavailable.
func UpstreamError(source string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUpstreamUnavailable, source, err)
}
