package search

import "context"

// EmbeddingProvider turns texts into fixed-length vectors.
type EmbeddingProvider interface {
	// Embed returns one vector per input text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// GenerationProvider produces free-text completions for a prompt.
type GenerationProvider interface {
	// Generate returns the model completion for the prompt.
	Generate(ctx context.Context, prompt string) (string, error)
	// IsAvailable is a cheap liveness probe used to pick fallback paths
	// before committing to a generation call.
	IsAvailable(ctx context.Context) bool
	// Model returns the configured model name, for health reporting.
	Model() string
	// BaseURL returns the backend endpoint, for health reporting.
	BaseURL() string
}

// IndexMatch is a single nearest-neighbor hit from the vector index.
type IndexMatch struct {
	ID       string
	Score    float64
	Metadata map[string]interface{}
}

// VectorIndex performs nearest-neighbor search over stored document vectors.
type VectorIndex interface {
	Query(ctx context.Context, vector []float32, topK int) ([]IndexMatch, error)
}

// KnowledgeStore persists answered queries keyed by embedding.
type KnowledgeStore interface {
	// All returns every stored entry. The semantic cache scans them
	// linearly; the corpus is expected to stay moderate in size.
	All(ctx context.Context) ([]KnowledgeBaseEntry, error)
	Create(ctx context.Context, entry *KnowledgeBaseEntry) error
	// Touch increments usage bookkeeping for a served entry. Lost updates
	// under concurrent touches are acceptable.
	Touch(ctx context.Context, id int64) error
}

// PatternStore persists per-query rewrite patterns.
type PatternStore interface {
	TopBySuccessRate(ctx context.Context, limit int) ([]QueryPattern, error)
	// Upsert records one use of the pattern keyed by original query,
	// updating the success aggregates.
	Upsert(ctx context.Context, pattern *QueryPattern) error
}

// FeedbackStore persists explicit user feedback events.
type FeedbackStore interface {
	Create(ctx context.Context, entry *FeedbackEntry) error
	RecentByUser(ctx context.Context, userID string, limit int) ([]FeedbackEntry, error)
}

// QueryLogStore persists executed searches.
type QueryLogStore interface {
	Create(ctx context.Context, entry *QueryLogEntry) error
}

// DocumentStore resolves stored resume records by identifier or name.
type DocumentStore interface {
	FindByRefs(ctx context.Context, refs []string) ([]Document, error)
}

// LearningQueue accepts best-effort write tasks decoupled from the
// request/response lifecycle.
type LearningQueue interface {
	Enqueue(ctx context.Context, task Task, payload interface{}) error
}
