package search

import (
	"context"

	"resumatch/src/log"
)

// DefaultCacheThreshold is the hand-tuned similarity bar a stored entry must
// strictly exceed to be served from cache. Configurable because the value
// has no empirical derivation.
const DefaultCacheThreshold = 0.85

// Cache answers a query from previously stored knowledge-base entries when
// one is semantically close enough, short-circuiting retrieval entirely.
type Cache struct {
	knowledge KnowledgeStore
	embedder  EmbeddingProvider
	threshold float64
}

func NewCache(knowledge KnowledgeStore, embedder EmbeddingProvider, threshold float64) *Cache {
	if threshold <= 0 {
		threshold = DefaultCacheThreshold
	}
	return &Cache{
		knowledge: knowledge,
		embedder:  embedder,
		threshold: threshold,
	}
}

// Lookup scans the knowledge base for the entry most similar to the query
// and returns it only if the similarity strictly exceeds the threshold.
// Any collaborator failure reads as a miss. Entries whose embedding length
// differs from the query embedding are non-comparable and skipped.
func (c *Cache) Lookup(ctx context.Context, analysis QueryAnalysis, rawQuery string) (*KnowledgeBaseEntry, float64, bool) {
	query := analysis.RewrittenQuery
	if query == "" {
		query = rawQuery
	}

	vectors, err := c.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 || len(vectors[0]) == 0 {
		if err != nil {
			log.Error(err, "cache lookup embedding failed, treating as miss", "query", rawQuery)
		}
		return nil, 0, false
	}
	queryVec := vectors[0]

	entries, err := c.knowledge.All(ctx)
	if err != nil {
		log.Error(err, "knowledge base scan failed, treating as miss", "query", rawQuery)
		return nil, 0, false
	}

	var best *KnowledgeBaseEntry
	bestScore := c.threshold
	for i := range entries {
		if len(entries[i].Embedding) != len(queryVec) {
			continue
		}
		score := CosineSimilarity(queryVec, entries[i].Embedding)
		if score > bestScore {
			bestScore = score
			best = &entries[i]
		}
	}

	if best == nil {
		return nil, 0, false
	}

	log.Debug("semantic cache hit", "query", rawQuery, "question", best.Question, "score", bestScore)
	return best, bestScore, true
}
