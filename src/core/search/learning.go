package search

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"resumatch/src/log"
)

// Task identifies a best-effort learning write handed to the queue.
type Task string

const (
	TaskKnowledgeWrite Task = "knowledge_write"
	TaskQueryLog       Task = "query_log"
	TaskPatternUpsert  Task = "pattern_upsert"
	TaskFeedback       Task = "feedback"
	TaskKnowledgeTouch Task = "knowledge_touch"
)

// KnowledgeWritePayload stores a freshly answered query in the knowledge
// base. The consumer embeds Question itself so the request path never waits
// on a second embedding call.
type KnowledgeWritePayload struct {
	Question   string        `json:"question"`
	Answer     string        `json:"answer"`
	References []string      `json:"references"`
	Confidence float64       `json:"confidence"`
	Features   QueryFeatures `json:"features"`
}

// QueryLogPayload records one executed search.
type QueryLogPayload struct {
	Query          string        `json:"query"`
	RewrittenQuery string        `json:"rewrittenQuery"`
	Results        []string      `json:"results"`
	UserID         string        `json:"userId"`
	Confidence     float64       `json:"confidence"`
	ResultCount    int           `json:"resultCount"`
	Features       QueryFeatures `json:"features"`
	SessionID      string        `json:"sessionId"`
	Timestamp      time.Time     `json:"timestamp"`
}

// PatternUpsertPayload updates the per-query rewrite aggregates.
type PatternUpsertPayload struct {
	OriginalQuery  string        `json:"originalQuery"`
	RewrittenQuery string        `json:"rewrittenQuery"`
	QueryType      QueryType     `json:"queryType"`
	Features       QueryFeatures `json:"features"`
	Success        bool          `json:"success"`
}

// FeedbackPayload appends one feedback event.
type FeedbackPayload struct {
	UserID      string      `json:"userId"`
	Query       string      `json:"query"`
	ResultID    string      `json:"resultId"`
	Rating      int         `json:"rating"`
	Interaction Interaction `json:"interaction"`
	SessionID   string      `json:"sessionId"`
	Timestamp   time.Time   `json:"timestamp"`
}

// KnowledgeTouchPayload bumps usage bookkeeping for a served cache entry.
type KnowledgeTouchPayload struct {
	EntryID int64 `json:"entryId"`
}

// Sink publishes learning writes after a successful non-cached search and
// records explicit feedback. Every publish is fire-and-forget: failures are
// logged and swallowed, never surfaced to the caller.
type Sink struct {
	queue LearningQueue
}

func NewSink(queue LearningQueue) *Sink {
	return &Sink{queue: queue}
}

// RecordSearch enqueues the knowledge-base entry, the query log record, and
// the pattern upsert for a completed search.
func (s *Sink) RecordSearch(ctx context.Context, rawQuery, answer string, analysis QueryAnalysis, results []RankedResult, userID string) {
	refs := make([]string, 0, len(results))
	for _, result := range results {
		if name := resultRef(result); name != "" {
			refs = append(refs, name)
		}
	}

	s.enqueue(ctx, TaskKnowledgeWrite, KnowledgeWritePayload{
		Question:   rawQuery,
		Answer:     answer,
		References: refs,
		Confidence: analysis.Confidence,
		Features:   analysis.Features,
	})

	s.enqueue(ctx, TaskQueryLog, QueryLogPayload{
		Query:          rawQuery,
		RewrittenQuery: analysis.RewrittenQuery,
		Results:        refs,
		UserID:         userID,
		Confidence:     analysis.Confidence,
		ResultCount:    len(results),
		Features:       analysis.Features,
		SessionID:      uuid.New().String(),
		Timestamp:      time.Now().UTC(),
	})

	s.enqueue(ctx, TaskPatternUpsert, PatternUpsertPayload{
		OriginalQuery:  rawQuery,
		RewrittenQuery: analysis.RewrittenQuery,
		QueryType:      analysis.Features.QueryType,
		Features:       analysis.Features,
		Success:        len(results) > 0,
	})
}

// RecordFeedback validates and enqueues one feedback event. It is available
// independently of the search flow.
func (s *Sink) RecordFeedback(ctx context.Context, userID string, feedback Feedback) error {
	if feedback.Query == "" || feedback.ResultID == "" {
		return fmt.Errorf("%w: query and resultId are required", ErrInvalidRequest)
	}
	if feedback.Rating < 1 || feedback.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidRequest)
	}

	interaction := feedback.Interaction
	if interaction == "" {
		interaction = InteractionView
	}

	s.enqueue(ctx, TaskFeedback, FeedbackPayload{
		UserID:      userID,
		Query:       feedback.Query,
		ResultID:    feedback.ResultID,
		Rating:      feedback.Rating,
		Interaction: interaction,
		SessionID:   uuid.New().String(),
		Timestamp:   time.Now().UTC(),
	})

	return nil
}

// RecordCacheHit bumps the served entry's usage counters.
func (s *Sink) RecordCacheHit(ctx context.Context, entryID int64) {
	s.enqueue(ctx, TaskKnowledgeTouch, KnowledgeTouchPayload{EntryID: entryID})
}

func (s *Sink) enqueue(ctx context.Context, task Task, payload interface{}) {
	if err := s.queue.Enqueue(ctx, task, payload); err != nil {
		log.Error(err, "failed to enqueue learning task", "task", string(task))
	}
}

func resultRef(result RankedResult) string {
	if result.Metadata.Name != "" {
		return result.Metadata.Name
	}
	return result.ID
}
