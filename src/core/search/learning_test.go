package search_test

import (
	"context"
	"errors"
	"testing"

	"resumatch/src/core/search"
)

func TestRecordSearchEnqueuesThreeTasks(t *testing.T) {
	queue := &fakeQueue{}
	sink := search.NewSink(queue)

	analysis := search.QueryAnalysis{
		RewrittenQuery: "react developer",
		Confidence:     0.8,
		Features:       search.QueryFeatures{QueryType: search.QueryTypeSkillBased},
	}
	ranked := []search.RankedResult{
		{SearchCandidate: search.SearchCandidate{
			ID:       "uuid-1",
			Metadata: search.CandidateMetadata{Name: "Alice Chen"},
		}},
		{SearchCandidate: search.SearchCandidate{ID: "uuid-2"}},
	}

	sink.RecordSearch(context.Background(), "react", "Found 2 candidates.", analysis, ranked, "user-1")

	if len(queue.tasks) != 3 {
		t.Fatalf("enqueued %d tasks, want 3", len(queue.tasks))
	}

	writes := queue.byTask(search.TaskKnowledgeWrite)
	if len(writes) != 1 {
		t.Fatalf("knowledge writes = %d, want 1", len(writes))
	}
	write := writes[0].payload.(search.KnowledgeWritePayload)
	if write.Question != "react" || write.Answer != "Found 2 candidates." {
		t.Errorf("knowledge write = %+v, want raw query and answer", write)
	}
	// References use the display name when present, the index id otherwise.
	if len(write.References) != 2 || write.References[0] != "Alice Chen" || write.References[1] != "uuid-2" {
		t.Errorf("References = %v, want [Alice Chen uuid-2]", write.References)
	}

	logs := queue.byTask(search.TaskQueryLog)
	if len(logs) != 1 {
		t.Fatalf("query logs = %d, want 1", len(logs))
	}
	logged := logs[0].payload.(search.QueryLogPayload)
	if logged.UserID != "user-1" || logged.ResultCount != 2 || logged.SessionID == "" {
		t.Errorf("query log = %+v, want user, count and session id", logged)
	}

	upserts := queue.byTask(search.TaskPatternUpsert)
	if len(upserts) != 1 {
		t.Fatalf("pattern upserts = %d, want 1", len(upserts))
	}
	upsert := upserts[0].payload.(search.PatternUpsertPayload)
	if upsert.OriginalQuery != "react" || upsert.RewrittenQuery != "react developer" || !upsert.Success {
		t.Errorf("pattern upsert = %+v, want original, rewrite and success", upsert)
	}
}

func TestRecordSearchSwallowsQueueFailure(t *testing.T) {
	sink := search.NewSink(&fakeQueue{err: errUnavailable})

	// Must not panic or surface the error.
	sink.RecordSearch(context.Background(), "react", "answer", search.QueryAnalysis{}, nil, "user-1")
}

func TestRecordFeedbackValidation(t *testing.T) {
	tests := []struct {
		name     string
		feedback search.Feedback
		wantErr  bool
	}{
		{
			name:     "valid",
			feedback: search.Feedback{Query: "react", ResultID: "doc-1", Rating: 4},
		},
		{
			name:     "missing query",
			feedback: search.Feedback{ResultID: "doc-1", Rating: 4},
			wantErr:  true,
		},
		{
			name:     "missing result id",
			feedback: search.Feedback{Query: "react", Rating: 4},
			wantErr:  true,
		},
		{
			name:     "rating below range",
			feedback: search.Feedback{Query: "react", ResultID: "doc-1", Rating: 0},
			wantErr:  true,
		},
		{
			name:     "rating above range",
			feedback: search.Feedback{Query: "react", ResultID: "doc-1", Rating: 6},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := &fakeQueue{}
			sink := search.NewSink(queue)

			err := sink.RecordFeedback(context.Background(), "user-1", tt.feedback)
			if tt.wantErr {
				if !errors.Is(err, search.ErrInvalidRequest) {
					t.Errorf("RecordFeedback() error = %v, want ErrInvalidRequest", err)
				}
				if len(queue.tasks) != 0 {
					t.Errorf("enqueued %d tasks for invalid feedback, want 0", len(queue.tasks))
				}
				return
			}
			if err != nil {
				t.Errorf("RecordFeedback() error = %v, want nil", err)
			}
			if len(queue.byTask(search.TaskFeedback)) != 1 {
				t.Errorf("enqueued %d feedback tasks, want 1", len(queue.byTask(search.TaskFeedback)))
			}
		})
	}
}

func TestRecordFeedbackDefaultsInteraction(t *testing.T) {
	queue := &fakeQueue{}
	sink := search.NewSink(queue)

	err := sink.RecordFeedback(context.Background(), "user-1",
		search.Feedback{Query: "react", ResultID: "doc-1", Rating: 3})
	if err != nil {
		t.Fatalf("RecordFeedback() error = %v", err)
	}

	payload := queue.tasks[0].payload.(search.FeedbackPayload)
	if payload.Interaction != search.InteractionView {
		t.Errorf("Interaction = %q, want default %q", payload.Interaction, search.InteractionView)
	}
	if payload.Timestamp.IsZero() || payload.SessionID == "" {
		t.Errorf("payload = %+v, want timestamp and session id set", payload)
	}
}

func TestRecordCacheHit(t *testing.T) {
	queue := &fakeQueue{}
	sink := search.NewSink(queue)

	sink.RecordCacheHit(context.Background(), 42)

	touches := queue.byTask(search.TaskKnowledgeTouch)
	if len(touches) != 1 {
		t.Fatalf("touch tasks = %d, want 1", len(touches))
	}
	if payload := touches[0].payload.(search.KnowledgeTouchPayload); payload.EntryID != 42 {
		t.Errorf("EntryID = %d, want 42", payload.EntryID)
	}
}
