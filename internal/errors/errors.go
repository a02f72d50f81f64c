// Package errors provides domain-specific error types and sentinel errors
// shared by the classification pipeline and its front-ends.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is() to check them.
var (
	// ErrInvalidInput indicates an empty or unusable query.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound indicates a requested artifact or record was not found.
	ErrNotFound = errors.New("not found")

	// ErrTimeout indicates an operation exceeded its deadline.
	ErrTimeout = errors.New("operation timed out")

	// ErrModelNotLoaded indicates the classifier could not initialize its model.
	ErrModelNotLoaded = errors.New("model not loaded")

	// ErrMalformedOutput indicates a classification backend returned unusable scores.
	ErrMalformedOutput = errors.New("malformed classifier output")

	// ErrUnknownIntent indicates a label outside the intent taxonomy.
	ErrUnknownIntent = errors.New("unknown intent")

	// ErrUnknownCrop indicates a crop outside the vocabulary.
	ErrUnknownCrop = errors.New("unknown crop")

	// ErrRateLimited indicates the caller exceeded its request budget.
	ErrRateLimited = errors.New("rate limit exceeded")
)

// ValidationError represents a rejected field value.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match ErrInvalidInput.
func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ArtifactError describes a failure reading a model artifact.
type ArtifactError struct {
	Path string
	Err  error
}

func (e *ArtifactError) Error() string {
	return fmt.Sprintf("artifact %s: %v", e.Path, e.Err)
}

func (e *ArtifactError) Unwrap() error {
	return e.Err
}
