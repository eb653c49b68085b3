package learning

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"

	"resumatch/src/core/search"
	"resumatch/src/log"
)

// Worker consumes learning tasks and applies them to the durable stores.
// All writes are advisory: a failed write is logged and dropped rather than
// retried forever, so a poisoned message can never wedge the queue.
type Worker struct {
	knowledge search.KnowledgeStore
	patterns  search.PatternStore
	feedback  search.FeedbackStore
	queryLog  search.QueryLogStore
	embedder  search.EmbeddingProvider
}

func NewWorker(
	knowledge search.KnowledgeStore,
	patterns search.PatternStore,
	feedback search.FeedbackStore,
	queryLog search.QueryLogStore,
	embedder search.EmbeddingProvider,
) *Worker {
	return &Worker{
		knowledge: knowledge,
		patterns:  patterns,
		feedback:  feedback,
		queryLog:  queryLog,
		embedder:  embedder,
	}
}

// Register attaches the worker to a router consuming from the subscriber.
func (w *Worker) Register(router *message.Router, subscriber message.Subscriber) {
	router.AddNoPublisherHandler("learning_writes", Topic, subscriber, w.Process)
}

// Process routes one message by task type. It always acks: learning is
// best-effort by design and redelivery would not make a bad write good.
func (w *Worker) Process(msg *message.Message) error {
	var envelope Envelope
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		log.Error(err, "dropping malformed learning message", "message_id", msg.UUID)
		return nil
	}

	ctx := msg.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if err := w.process(ctx, envelope); err != nil {
		log.Error(err, "learning write failed", "task", string(envelope.Task), "message_id", msg.UUID)
	}

	return nil
}

func (w *Worker) process(ctx context.Context, envelope Envelope) error {
	switch envelope.Task {
	case search.TaskKnowledgeWrite:
		var payload search.KnowledgeWritePayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal knowledge write: %w", err)
		}
		return w.writeKnowledge(ctx, payload)

	case search.TaskQueryLog:
		var payload search.QueryLogPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal query log: %w", err)
		}
		return w.queryLog.Create(ctx, &search.QueryLogEntry{
			Query:          payload.Query,
			RewrittenQuery: payload.RewrittenQuery,
			Results:        payload.Results,
			UserID:         payload.UserID,
			Confidence:     payload.Confidence,
			ResultCount:    payload.ResultCount,
			Features:       payload.Features,
			SessionID:      payload.SessionID,
			Timestamp:      payload.Timestamp,
		})

	case search.TaskPatternUpsert:
		var payload search.PatternUpsertPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal pattern upsert: %w", err)
		}
		pattern := &search.QueryPattern{
			OriginalQuery:  payload.OriginalQuery,
			RewrittenQuery: payload.RewrittenQuery,
			QueryType:      payload.QueryType,
			Features:       payload.Features,
			TotalUses:      1,
			LastUsed:       time.Now().UTC(),
		}
		if payload.Success {
			pattern.SuccessCount = 1
		}
		return w.patterns.Upsert(ctx, pattern)

	case search.TaskFeedback:
		var payload search.FeedbackPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal feedback: %w", err)
		}
		return w.feedback.Create(ctx, &search.FeedbackEntry{
			UserID:      payload.UserID,
			Query:       payload.Query,
			ResultID:    payload.ResultID,
			Rating:      payload.Rating,
			Interaction: payload.Interaction,
			SessionID:   payload.SessionID,
			Timestamp:   payload.Timestamp,
		})

	case search.TaskKnowledgeTouch:
		var payload search.KnowledgeTouchPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return fmt.Errorf("failed to unmarshal knowledge touch: %w", err)
		}
		return w.knowledge.Touch(ctx, payload.EntryID)

	default:
		return fmt.Errorf("unknown learning task: %s", envelope.Task)
	}
}

// writeKnowledge embeds the original question here, off the request path,
// then stores the entry.
func (w *Worker) writeKnowledge(ctx context.Context, payload search.KnowledgeWritePayload) error {
	vectors, err := w.embedder.Embed(ctx, []string{payload.Question})
	if err != nil {
		return fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		return fmt.Errorf("empty embedding for question %q", payload.Question)
	}

	now := time.Now().UTC()
	return w.knowledge.Create(ctx, &search.KnowledgeBaseEntry{
		Question:   payload.Question,
		Embedding:  vectors[0],
		Answer:     payload.Answer,
		References: payload.References,
		Confidence: clampConfidence(payload.Confidence),
		Features:   payload.Features,
		LastUsed:   now,
		CreatedAt:  now,
	})
}

func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
