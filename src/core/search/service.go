package search

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"resumatch/src/infrastructure/metrics"
	"resumatch/src/log"
)

// DefaultMaxResults caps how many reranked candidates are presented.
const DefaultMaxResults = 10

// NoResultsAnswer is the fixed answer for searches with no surviving
// candidates.
const NoResultsAnswer = "No relevant candidates found for your search. Try refining your query with more specific terms or check the suggestions below."

// fallbackSuggestions is returned when the generator cannot produce
// query-broadening suggestions. Always exactly four entries.
var fallbackSuggestions = []string{
	`Try searching with specific skills (e.g., "JavaScript developer")`,
	`Include years of experience (e.g., "5 years React")`,
	`Search by role title (e.g., "Senior Engineer")`,
	`Combine skills and roles (e.g., "Python data scientist")`,
}

// Service is the search orchestrator: it sequences analysis, the semantic
// cache check, retrieval, reranking, answer generation, and the learning
// writes, and owns the degrade-gracefully failure policy. Collaborator
// failures never fail a request; only an invalid query does.
type Service interface {
	Search(ctx context.Context, userID, query string) (*Response, error)
	RecordFeedback(ctx context.Context, userID string, feedback Feedback) error
	Health(ctx context.Context) HealthStatus
}

// Config carries the hand-tuned pipeline parameters.
type Config struct {
	CacheThreshold float64
	RelevanceFloor float64
	TopK           int
	MaxResults     int
}

type service struct {
	analyzer   *Analyzer
	cache      *Cache
	retriever  *Retriever
	reranker   *Reranker
	sink       *Sink
	generator  GenerationProvider
	documents  DocumentStore
	maxResults int
}

func NewService(
	analyzer *Analyzer,
	cache *Cache,
	retriever *Retriever,
	reranker *Reranker,
	sink *Sink,
	generator GenerationProvider,
	documents DocumentStore,
	cfg Config,
) Service {
	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &service{
		analyzer:   analyzer,
		cache:      cache,
		retriever:  retriever,
		reranker:   reranker,
		sink:       sink,
		generator:  generator,
		documents:  documents,
		maxResults: maxResults,
	}
}

func (s *service) Search(ctx context.Context, userID, query string) (resp *Response, err error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: valid query string is required", ErrInvalidRequest)
	}

	// Final safety net: a programming error inside the pipeline degrades
	// to an empty result instead of a failed request.
	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Errorf("panic: %v", r), "search pipeline panicked", "query", query)
			metrics.CountSearch("error")
			resp = emptyResponse(query)
			err = nil
		}
	}()

	analysis := s.timedAnalyze(ctx, query)

	if entry, score, ok := s.timedCacheLookup(ctx, analysis, query); ok {
		s.sink.RecordCacheHit(ctx, entry.ID)
		metrics.CountSearch("cached")
		return s.cachedResponse(ctx, entry, score, analysis), nil
	}

	candidates, stats := s.timedRetrieve(ctx, analysis, query)
	stats.Confidence = analysis.Confidence

	if len(candidates) == 0 {
		metrics.CountSearch("empty")
		return &Response{
			Answer:        NoResultsAnswer,
			References:    []Reference{},
			QueryAnalysis: analysis,
			SearchStats:   stats,
			Suggestions:   s.suggestions(ctx, query),
		}, nil
	}

	ranked := s.timedRerank(ctx, candidates, userID, analysis)
	if len(ranked) > s.maxResults {
		ranked = ranked[:s.maxResults]
	}
	stats.FinalResults = len(ranked)

	answer := s.answer(ctx, query, analysis, ranked)

	s.sink.RecordSearch(ctx, query, answer, analysis, ranked, userID)
	metrics.CountSearch("fresh")

	return &Response{
		Answer:        answer,
		References:    formatReferences(ranked),
		QueryAnalysis: analysis,
		SearchStats:   stats,
		Suggestions:   []string{},
	}, nil
}

func (s *service) RecordFeedback(ctx context.Context, userID string, feedback Feedback) error {
	return s.sink.RecordFeedback(ctx, userID, feedback)
}

func (s *service) Health(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Generator: Generator{
			Available: s.generator != nil && s.generator.IsAvailable(ctx),
			Model:     s.generator.Model(),
			BaseURL:   s.generator.BaseURL(),
		},
	}
}

func (s *service) timedAnalyze(ctx context.Context, query string) QueryAnalysis {
	defer metrics.ObserveStage("analyze", time.Now())
	return s.analyzer.Analyze(ctx, query)
}

func (s *service) timedCacheLookup(ctx context.Context, analysis QueryAnalysis, query string) (*KnowledgeBaseEntry, float64, bool) {
	defer metrics.ObserveStage("cache_check", time.Now())
	return s.cache.Lookup(ctx, analysis, query)
}

func (s *service) timedRetrieve(ctx context.Context, analysis QueryAnalysis, query string) ([]SearchCandidate, SearchStats) {
	defer metrics.ObserveStage("retrieve", time.Now())
	return s.retriever.Retrieve(ctx, analysis, query)
}

func (s *service) timedRerank(ctx context.Context, candidates []SearchCandidate, userID string, analysis QueryAnalysis) []RankedResult {
	defer metrics.ObserveStage("rerank", time.Now())
	return s.reranker.Rerank(ctx, candidates, userID, analysis)
}

// cachedResponse reconstructs presentable references from the stored
// reference identifiers. Document lookup failures degrade to an answer
// without references.
func (s *service) cachedResponse(ctx context.Context, entry *KnowledgeBaseEntry, score float64, analysis QueryAnalysis) *Response {
	references := []Reference{}
	if len(entry.References) > 0 {
		docs, err := s.documents.FindByRefs(ctx, entry.References)
		if err != nil {
			log.Error(err, "failed to reconstruct cached references", "question", entry.Question)
		} else {
			for _, doc := range docs {
				name := doc.OriginalName
				if name == "" {
					name = doc.FileName
				}
				if name == "" {
					name = "Unknown"
				}
				references = append(references, Reference{
					Name:          name,
					Content:       doc.Text,
					Score:         score,
					OriginalScore: score,
					Metadata: ReferenceMetadata{
						PageNumber: 1,
						Chunk:      1,
						Skills:     doc.Skills,
						Experience: doc.Experience,
						Role:       doc.Role,
					},
				})
			}
		}
	}

	return &Response{
		Answer:        entry.Answer,
		References:    references,
		Cached:        true,
		QueryAnalysis: analysis,
		SearchStats: SearchStats{
			TotalFound:     len(references),
			AfterFiltering: len(references),
			FinalResults:   len(references),
			Confidence:     score,
		},
		Suggestions: []string{},
	}
}

// answer produces the natural-language summary for a successful search. The
// templated fallback is always available; the generator only improves on it.
func (s *service) answer(ctx context.Context, query string, analysis QueryAnalysis, ranked []RankedResult) string {
	answer := fmt.Sprintf("Found %d candidates matching your search for %q.", len(ranked), query)

	if s.generator == nil || !s.generator.IsAvailable(ctx) {
		return answer
	}

	generated, err := s.generator.Generate(ctx, answerPrompt(query, analysis, ranked))
	if err != nil {
		log.Error(err, "answer generation failed, using templated answer", "query", query)
		return answer
	}
	if trimmed := strings.TrimSpace(generated); trimmed != "" {
		return trimmed
	}
	return answer
}

func answerPrompt(query string, analysis QueryAnalysis, ranked []RankedResult) string {
	var summary strings.Builder
	for i, result := range ranked {
		if i >= 5 {
			break
		}
		fmt.Fprintf(&summary, "- name: %s, role: %s, skills: %s, score: %.2f\n",
			result.Metadata.DisplayName(),
			result.Metadata.Role,
			strings.Join(result.Metadata.Skills, ", "),
			result.FinalScore)
	}

	return fmt.Sprintf(`You are an expert resume search assistant. Based on the search results, provide a helpful summary.

Search Query: %q
Enhanced Query: %q

Top Candidates:
%s
Provide a natural, helpful response (2-3 sentences) that:
1. Acknowledges the search and number of results
2. Highlights key skills/roles found
3. Mentions the quality of matches

Keep it concise and professional:`, query, analysis.RewrittenQuery, summary.String())
}

// suggestions returns exactly four query-broadening suggestions for an
// empty result set.
func (s *service) suggestions(ctx context.Context, query string) []string {
	if s.generator == nil || !s.generator.IsAvailable(ctx) {
		return fallbackSuggestions
	}

	prompt := fmt.Sprintf(`Based on the search query %q that returned no results, suggest 4 alternative search terms for finding resumes/CVs:

1. Different skill combinations
2. Role variations
3. Experience levels
4. Industry-specific terms

Provide only the 4 suggestions, one per line:`, query)

	response, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		log.Error(err, "suggestion generation failed, using fallback list", "query", query)
		return fallbackSuggestions
	}

	parsed := parseSuggestions(response)
	if len(parsed) < 4 {
		return fallbackSuggestions
	}
	return parsed[:4]
}

var listPrefixRe = regexp.MustCompile(`^\d+\.\s*`)

func parseSuggestions(response string) []string {
	var suggestions []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(listPrefixRe.ReplaceAllString(strings.TrimSpace(line), ""))
		if line != "" {
			suggestions = append(suggestions, line)
		}
	}
	return suggestions
}

func formatReferences(ranked []RankedResult) []Reference {
	references := make([]Reference, len(ranked))
	for i, result := range ranked {
		references[i] = Reference{
			Name:          result.Metadata.DisplayName(),
			Content:       result.Metadata.Text,
			Score:         result.FinalScore,
			OriginalScore: result.RawScore,
			Metadata: ReferenceMetadata{
				PageNumber: orOne(result.Metadata.PageNumber),
				Chunk:      orOne(result.Metadata.Chunk),
				Skills:     orEmpty(result.Metadata.Skills),
				Experience: result.Metadata.Experience,
				Role:       result.Metadata.Role,
			},
		}
	}
	return references
}

func emptyResponse(query string) *Response {
	return &Response{
		Answer:     NoResultsAnswer,
		References: []Reference{},
		QueryAnalysis: QueryAnalysis{
			Features:       ExtractFeatures(query),
			RewrittenQuery: query,
			Confidence:     0,
		},
		SearchStats: SearchStats{},
		Suggestions: fallbackSuggestions,
	}
}

func orOne(v int) int {
	if v <= 0 {
		return 1
	}
	return v
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
