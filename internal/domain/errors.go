package domain

import "errors"

var (
	// ErrCollectionNotFound signals that a tenant has no indexed collection.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrCollectionAlreadyExists signals a duplicate collection; callers must
	// delete before re-ingesting.
	ErrCollectionAlreadyExists = errors.New("collection already exists")
	// ErrMalformedDocument signals a menu document missing its venue name or sections.
	ErrMalformedDocument = errors.New("malformed menu document")
	// ErrEmbeddingProvider signals an embedding provider failure.
	ErrEmbeddingProvider = errors.New("embedding provider error")
	// ErrGenerationProvider signals a generation provider failure.
	ErrGenerationProvider = errors.New("generation provider error")
	// ErrInvalidResponseFormat signals generation output that does not match the
	// response schema.
	ErrInvalidResponseFormat = errors.New("invalid response format")
	// ErrValidation signals malformed caller input.
	ErrValidation = errors.New("validation failed")
	// ErrRateLimited signals a provider rate limit hit.
	ErrRateLimited = errors.New("rate limited")
)
