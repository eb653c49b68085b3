package search_test

import (
	"context"
	"errors"

	"resumatch/src/core/search"
)

var errUnavailable = errors.New("collaborator down")

type fakeEmbedder struct {
	vectors  map[string][]float32
	fallback []float32
	err      error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if v, ok := f.vectors[text]; ok {
			out[i] = v
		} else {
			out[i] = f.fallback
		}
	}
	return out, nil
}

type fakeGenerator struct {
	available bool
	response  string
	err       error
	prompts   []string
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeGenerator) IsAvailable(ctx context.Context) bool { return f.available }
func (f *fakeGenerator) Model() string                        { return "test-model" }
func (f *fakeGenerator) BaseURL() string                      { return "http://test" }

type fakeIndex struct {
	matches []search.IndexMatch
	err     error
}

func (f *fakeIndex) Query(ctx context.Context, vector []float32, topK int) ([]search.IndexMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.matches, nil
}

type fakeKnowledge struct {
	entries []search.KnowledgeBaseEntry
	touched []int64
	err     error
}

func (f *fakeKnowledge) All(ctx context.Context) ([]search.KnowledgeBaseEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entries, nil
}

func (f *fakeKnowledge) Create(ctx context.Context, entry *search.KnowledgeBaseEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeKnowledge) Touch(ctx context.Context, id int64) error {
	f.touched = append(f.touched, id)
	return nil
}

type fakePatterns struct {
	patterns []search.QueryPattern
	err      error
}

func (f *fakePatterns) TopBySuccessRate(ctx context.Context, limit int) ([]search.QueryPattern, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.patterns) > limit {
		return f.patterns[:limit], nil
	}
	return f.patterns, nil
}

func (f *fakePatterns) Upsert(ctx context.Context, pattern *search.QueryPattern) error {
	return nil
}

type fakeFeedback struct {
	entries []search.FeedbackEntry
	err     error
}

func (f *fakeFeedback) Create(ctx context.Context, entry *search.FeedbackEntry) error {
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeFeedback) RecentByUser(ctx context.Context, userID string, limit int) ([]search.FeedbackEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []search.FeedbackEntry
	for _, entry := range f.entries {
		if entry.UserID == userID {
			out = append(out, entry)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type fakeDocuments struct {
	docs []search.Document
	err  error
}

func (f *fakeDocuments) FindByRefs(ctx context.Context, refs []string) ([]search.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []search.Document
	for _, doc := range f.docs {
		for _, ref := range refs {
			if doc.ID == ref || doc.OriginalName == ref || doc.FileName == ref {
				out = append(out, doc)
				break
			}
		}
	}
	return out, nil
}

type queuedTask struct {
	task    search.Task
	payload interface{}
}

type fakeQueue struct {
	tasks []queuedTask
	err   error
}

func (f *fakeQueue) Enqueue(ctx context.Context, task search.Task, payload interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, queuedTask{task: task, payload: payload})
	return nil
}

func (f *fakeQueue) byTask(task search.Task) []queuedTask {
	var out []queuedTask
	for _, t := range f.tasks {
		if t.task == task {
			out = append(out, t)
		}
	}
	return out
}
