package weaviate

import (
	"context"
	"fmt"

	"resumatch/src/core/search"
)

// Index binds the SDK to one class and adapts it to the pipeline's
// VectorIndex contract.
type Index struct {
	sdk       *SDK
	className string
}

func NewIndex(sdk *SDK, className string) *Index {
	return &Index{
		sdk:       sdk,
		className: className,
	}
}

func (i *Index) Query(ctx context.Context, vector []float32, topK int) ([]search.IndexMatch, error) {
	results, err := i.sdk.QueryVectors(ctx, i.className, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrIndexUnavailable, err)
	}

	matches := make([]search.IndexMatch, len(results))
	for idx, result := range results {
		matches[idx] = search.IndexMatch{
			ID:       result.ID,
			Score:    result.Score,
			Metadata: result.Properties,
		}
	}

	return matches, nil
}
