package models

import "errors"

// Error taxonomy for ingestion and query failures. Keyword-corpus
// rebuild failures are deliberately absent: they are logged and the
// corpus degrades to semantic-only, they never surface to callers.
var (
	// ErrValidation covers empty or invalid input text.
	ErrValidation = errors.New("validation error")

	// ErrEmbeddingFailure marks an embedding provider failure during
	// ingestion. It fails the whole batch: no partial semantic insert.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrSearchBackend marks an underlying vector-store query failure.
	// Propagated to the caller, never converted to an empty result set.
	ErrSearchBackend = errors.New("search backend failure")
)
