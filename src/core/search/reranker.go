package search

import (
	"context"
	"sort"
	"strings"
	"time"

	"resumatch/src/log"
)

// Reranking weights. They sum to 1.0 so the final score stays bounded by
// its bounded inputs.
const (
	weightRawScore = 0.5
	weightFeedback = 0.2
	weightQuery    = 0.2
	weightRecency  = 0.1

	feedbackWindow   = 50
	recencyDecayDays = 180
)

// Reranker reorders retrieved candidates by combining the index similarity
// with feedback, query-match, and recency signals.
type Reranker struct {
	feedback FeedbackStore
	now      func() time.Time
}

func NewReranker(feedback FeedbackStore) *Reranker {
	return &Reranker{
		feedback: feedback,
		now:      time.Now,
	}
}

// Rerank computes the blended score for every candidate and sorts
// descending, preserving retrieval order on ties. A feedback lookup failure
// degrades to the raw index ordering with FinalScore = RawScore.
func (r *Reranker) Rerank(ctx context.Context, candidates []SearchCandidate, userID string, analysis QueryAnalysis) []RankedResult {
	recent, err := r.feedback.RecentByUser(ctx, userID, feedbackWindow)
	if err != nil {
		log.Error(err, "feedback lookup failed, keeping retrieval order", "user", userID)
		return passthrough(candidates)
	}

	results := make([]RankedResult, len(candidates))
	for i, candidate := range candidates {
		feedbackScore := feedbackScore(candidate, recent)
		queryScore := queryScore(candidate, analysis)
		recencyScore := r.recencyScore(candidate)

		results[i] = RankedResult{
			SearchCandidate: candidate,
			FeedbackScore:   feedbackScore,
			QueryScore:      queryScore,
			RecencyScore:    recencyScore,
			FinalScore: weightRawScore*candidate.RawScore +
				weightFeedback*feedbackScore +
				weightQuery*queryScore +
				weightRecency*recencyScore,
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})

	return results
}

func passthrough(candidates []SearchCandidate) []RankedResult {
	results := make([]RankedResult, len(candidates))
	for i, candidate := range candidates {
		results[i] = RankedResult{
			SearchCandidate: candidate,
			FinalScore:      candidate.RawScore,
		}
	}
	return results
}

// feedbackScore averages the user's ratings for this document, scaled to
// [0,1]. No matching feedback reads as neutral 0.5.
func feedbackScore(candidate SearchCandidate, recent []FeedbackEntry) float64 {
	var sum, count int
	displayName := candidate.Metadata.DisplayName()
	for _, entry := range recent {
		if entry.ResultID == candidate.ID || entry.ResultID == displayName {
			sum += entry.Rating
			count++
		}
	}
	if count == 0 {
		return 0.5
	}
	return float64(sum) / float64(count) / 5
}

// queryScore rewards candidates that mention the detected skill and role
// terms, starting from a neutral 0.5.
func queryScore(candidate SearchCandidate, analysis QueryAnalysis) float64 {
	score := 0.5
	blob := candidate.Metadata.SearchBlob()

	if detected := len(analysis.Features.Skills); detected > 0 {
		score += 0.3 * float64(countMatches(blob, analysis.Features.Skills)) / float64(detected)
	}
	if detected := len(analysis.Features.Roles); detected > 0 {
		score += 0.2 * float64(countMatches(blob, analysis.Features.Roles)) / float64(detected)
	}

	return clamp01(score)
}

func countMatches(blob string, terms []string) int {
	var matches int
	for _, term := range terms {
		if strings.Contains(blob, strings.ToLower(term)) {
			matches++
		}
	}
	return matches
}

// recencyScore decays linearly over recencyDecayDays. A document with no
// processed or created timestamp counts as fresh.
func (r *Reranker) recencyScore(candidate SearchCandidate) float64 {
	processed := candidate.Metadata.ProcessedAt
	if processed == nil {
		processed = candidate.Metadata.CreatedAt
	}
	if processed == nil {
		return 1.0
	}

	days := r.now().Sub(*processed).Hours() / 24
	score := 1 - days/recencyDecayDays
	if score < 0 {
		return 0
	}
	return score
}
