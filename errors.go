package fts

import "github.com/kailas-cloud/fts/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrInvalidArgument        = domain.ErrInvalidArgument
	ErrMissingRequiredField   = domain.ErrMissingRequiredField
	ErrNoBoundSpecified       = domain.ErrNoBoundSpecified
	ErrNoChildQueries         = domain.ErrNoChildQueries
	ErrLookupNotFound         = domain.ErrLookupNotFound
	ErrAlreadyConsumed        = domain.ErrAlreadyConsumed
	ErrEngineUnavailable      = domain.ErrEngineUnavailable
	ErrSearchFailed           = domain.ErrSearchFailed
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
)

// FieldError names the field behind an ErrMissingRequiredField.
type FieldError = domain.FieldError
