package search

import (
	"context"
	"strings"

	"resumatch/src/log"
)

// Retrieval defaults. The relevance floor is hand-tuned and therefore
// configurable.
const (
	DefaultTopK           = 20
	DefaultRelevanceFloor = 0.3
)

// Retriever issues one nearest-neighbor query for the rewritten query and
// narrows the matches through a relevance floor and an optional
// keyword-overlap filter.
type Retriever struct {
	index    VectorIndex
	embedder EmbeddingProvider
	topK     int
	floor    float64
}

func NewRetriever(index VectorIndex, embedder EmbeddingProvider, topK int, floor float64) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if floor <= 0 {
		floor = DefaultRelevanceFloor
	}
	return &Retriever{
		index:    index,
		embedder: embedder,
		topK:     topK,
		floor:    floor,
	}
}

// Retrieve returns the filtered candidate set and partial stats. Embedding
// or index failures report zero candidates with empty stats; they never fail
// the request.
func (r *Retriever) Retrieve(ctx context.Context, analysis QueryAnalysis, rawQuery string) ([]SearchCandidate, SearchStats) {
	var stats SearchStats

	query := analysis.RewrittenQuery
	if query == "" {
		query = rawQuery
	}

	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 || len(vectors[0]) == 0 {
		if err != nil {
			log.Error(err, "query embedding failed, returning no candidates", "query", query)
		}
		return nil, stats
	}

	matches, err := r.index.Query(ctx, vectors[0], r.topK)
	if err != nil {
		log.Error(err, "vector index query failed, returning no candidates", "query", query)
		return nil, stats
	}
	stats.TotalFound = len(matches)

	candidates := make([]SearchCandidate, 0, len(matches))
	for _, match := range matches {
		if match.Score <= r.floor {
			continue
		}
		candidates = append(candidates, SearchCandidate{
			ID:       match.ID,
			RawScore: match.Score,
			Metadata: ParseMetadata(match.Metadata),
		})
	}
	stats.AfterFiltering = len(candidates)

	// The keyword filter only applies when the analysis actually detected
	// skill or role terms; a candidate must mention at least one of them.
	terms := append(append([]string{}, analysis.Features.Skills...), analysis.Features.Roles...)
	if len(terms) > 0 {
		candidates = filterByKeywords(candidates, terms)
	}

	return candidates, stats
}

func filterByKeywords(candidates []SearchCandidate, terms []string) []SearchCandidate {
	filtered := candidates[:0]
	for _, candidate := range candidates {
		blob := candidate.Metadata.SearchBlob()
		for _, term := range terms {
			if strings.Contains(blob, strings.ToLower(term)) {
				filtered = append(filtered, candidate)
				break
			}
		}
	}
	return filtered
}
