package search

import (
	"context"
	"fmt"
	"strings"

	"resumatch/src/log"
)

const maxRewriteExamples = 3

// Analyzer extracts features from raw queries, rewrites them for retrieval,
// and scores its own confidence in the analysis. History lookups and the
// generative rewrite are both optional: any failure degrades to the
// deterministic path, never to a failed analysis.
type Analyzer struct {
	patterns  PatternStore
	generator GenerationProvider
}

func NewAnalyzer(patterns PatternStore, generator GenerationProvider) *Analyzer {
	return &Analyzer{
		patterns:  patterns,
		generator: generator,
	}
}

// Analyze produces the QueryAnalysis consumed by every downstream stage.
func (a *Analyzer) Analyze(ctx context.Context, query string) QueryAnalysis {
	features := ExtractFeatures(query)

	patterns, err := a.patterns.TopBySuccessRate(ctx, 10)
	if err != nil {
		log.Error(err, "failed to load query patterns, continuing without history", "query", query)
		patterns = nil
	}

	return QueryAnalysis{
		Features:       features,
		RewrittenQuery: a.rewrite(ctx, query, patterns),
		Confidence:     confidence(features),
	}
}

// rewrite attempts a generative rewrite guided by historically successful
// examples and falls back to a deterministic enhancement when the generator
// is unavailable or misbehaves.
func (a *Analyzer) rewrite(ctx context.Context, query string, patterns []QueryPattern) string {
	if a.generator == nil || !a.generator.IsAvailable(ctx) {
		return enhanceQuery(query)
	}

	prompt := rewritePrompt(query, patterns)
	response, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		log.Error(err, "generative rewrite failed, using deterministic fallback", "query", query)
		return enhanceQuery(query)
	}

	rewritten := strings.TrimSpace(response)
	if rewritten == "" {
		return query
	}
	return rewritten
}

func rewritePrompt(query string, patterns []QueryPattern) string {
	var examples strings.Builder
	for i, p := range patterns {
		if i >= maxRewriteExamples {
			break
		}
		fmt.Fprintf(&examples, "%q -> %q\n", p.OriginalQuery, p.RewrittenQuery)
	}

	return fmt.Sprintf(`You are an expert at rewriting resume search queries for better results.

Examples of good rewrites:
%s
Current query: %q

Rewrite this query to be more specific and likely to find relevant resumes. Consider:
- If it's too vague, add relevant skills or roles
- If it's a name only, keep it simple
- If it's missing context, add industry-relevant terms
- Keep it concise but specific

Provide only the rewritten query, nothing else:`, examples.String(), query)
}

// enhanceQuery is the deterministic rewrite rule: a bare single-word skill
// gets "developer" appended, a bare single-word role gets "experience"
// appended, anything else passes through unchanged.
func enhanceQuery(query string) string {
	trimmed := strings.TrimSpace(query)
	if len(strings.Fields(trimmed)) != 1 {
		return query
	}

	lower := strings.ToLower(trimmed)
	for _, skill := range knownSkills {
		if lower == skill {
			return query + " developer"
		}
	}
	for _, role := range knownRoles {
		if lower == role {
			return query + " experience"
		}
	}

	return query
}

// confidence is a hand-tuned linear heuristic, not a learned model. It can
// later be replaced by a trained classifier without changing the interface.
func confidence(features QueryFeatures) float64 {
	c := 0.3
	if features.HasName {
		c += 0.2
	}
	c += 0.1 * float64(min(len(features.Skills), 3))
	c += 0.1 * float64(min(len(features.Roles), 2))
	if features.HasExperience {
		c += 0.1
	}
	if features.WordCount > 2 {
		c += 0.1
	}
	return clamp01(c)
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
