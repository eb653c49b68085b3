package search

import "errors"

// Degradation taxonomy. Collaborator adapters wrap these so call sites can
// classify failures; inside the pipeline every one of them converts to a
// stage-safe default and only ErrInvalidRequest ever reaches the caller.
var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrEmbeddingUnavailable  = errors.New("embedding provider unavailable")
	ErrIndexUnavailable      = errors.New("vector index unavailable")
	ErrGenerationUnavailable = errors.New("generation provider unavailable")
)
