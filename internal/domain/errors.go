package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument signals a malformed option value, wrong type or disallowed combination.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrMissingRequiredField signals a mandatory field absent at construction.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrNoBoundSpecified signals a range query with neither bound.
	ErrNoBoundSpecified = errors.New("no bound specified")
	// ErrNoChildQueries signals an empty compound query.
	ErrNoChildQueries = errors.New("no child queries")
	// ErrLookupNotFound signals a lookup on a nonexistent key.
	ErrLookupNotFound = errors.New("not found")
	// ErrAlreadyConsumed signals a second iteration over a row stream.
	ErrAlreadyConsumed = errors.New("already consumed")

	// ErrEngineUnavailable signals a transport failure talking to the execution engine.
	ErrEngineUnavailable = errors.New("search engine unavailable")
	// ErrSearchFailed signals an error status reported by the execution engine.
	ErrSearchFailed = errors.New("search failed")
	// ErrEmbeddingProviderError signals a failure of the embedding provider.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
)

// FieldError ties an error kind to the name of the field that caused it.
type FieldError struct {
	Kind  error
	Field string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Field)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// NewMissingField creates a missing required field error.
func NewMissingField(field string) error {
	return &FieldError{Kind: ErrMissingRequiredField, Field: field}
}

// InvalidArgument formats an ErrInvalidArgument with a message.
func InvalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
