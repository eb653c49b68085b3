package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	httpHdlr "resumatch/handler/http"
	"resumatch/src/core/search"
)

type stubService struct {
	searchResp    *search.Response
	searchErr     error
	feedbackErr   error
	lastUserID    string
	lastQuery     string
	lastFeedback  *search.Feedback
	feedbackCalls int
}

func (s *stubService) Search(ctx context.Context, userID, query string) (*search.Response, error) {
	s.lastUserID = userID
	s.lastQuery = query
	if s.searchErr != nil {
		return nil, s.searchErr
	}
	return s.searchResp, nil
}

func (s *stubService) RecordFeedback(ctx context.Context, userID string, feedback search.Feedback) error {
	s.feedbackCalls++
	s.lastFeedback = &feedback
	return s.feedbackErr
}

func (s *stubService) Health(ctx context.Context) search.HealthStatus {
	return search.HealthStatus{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Generator: search.Generator{Available: true, Model: "test-model"},
	}
}

func newTestRouter(service *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	httpHdlr.NewHandler(service).RegisterRoutes(r)
	return r
}

func doRequest(r *gin.Engine, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSearchEndpoint(t *testing.T) {
	service := &stubService{searchResp: &search.Response{
		Answer:      "Found 1 candidates.",
		References:  []search.Reference{{Name: "Alice Chen"}},
		Suggestions: []string{},
	}}
	r := newTestRouter(service)

	w := doRequest(r, http.MethodPost, "/api/search",
		`{"query":"react developers"}`,
		map[string]string{"X-User-ID": "user-1"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	if service.lastQuery != "react developers" || service.lastUserID != "user-1" {
		t.Errorf("service called with query %q user %q", service.lastQuery, service.lastUserID)
	}

	var resp search.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Answer != "Found 1 candidates." || len(resp.References) != 1 {
		t.Errorf("response = %+v, want the service response passed through", resp)
	}
}

func TestSearchEndpointInvalidRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
		err  error
	}{
		{
			name: "malformed json",
			body: `{"query":`,
		},
		{
			name: "service rejects query",
			body: `{"query":""}`,
			err:  fmt.Errorf("%w: valid query string is required", search.ErrInvalidRequest),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service := &stubService{searchErr: tt.err}
			r := newTestRouter(service)

			w := doRequest(r, http.MethodPost, "/api/search", tt.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestSearchEndpointInternalError(t *testing.T) {
	service := &stubService{searchErr: fmt.Errorf("unexpected wiring failure")}
	r := newTestRouter(service)

	w := doRequest(r, http.MethodPost, "/api/search", `{"query":"react"}`, nil)
	if w.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", w.Code)
	}
}

func TestSearchEndpointPiggybackedFeedback(t *testing.T) {
	service := &stubService{searchResp: &search.Response{}}
	r := newTestRouter(service)

	body := `{"query":"react","feedback":{"query":"previous","resultId":"Alice Chen","rating":5,"interaction":"click"}}`
	w := doRequest(r, http.MethodPost, "/api/search", body, nil)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if service.feedbackCalls != 1 {
		t.Fatalf("feedback recorded %d times, want 1", service.feedbackCalls)
	}
	if service.lastFeedback.ResultID != "Alice Chen" || service.lastFeedback.Rating != 5 {
		t.Errorf("feedback = %+v, want the piggybacked block", service.lastFeedback)
	}
}

func TestSearchEndpointBadPiggybackedFeedbackDoesNotBlockSearch(t *testing.T) {
	service := &stubService{
		searchResp:  &search.Response{Answer: "ok"},
		feedbackErr: fmt.Errorf("%w: rating must be between 1 and 5", search.ErrInvalidRequest),
	}
	r := newTestRouter(service)

	body := `{"query":"react","feedback":{"query":"previous","resultId":"x","rating":9}}`
	w := doRequest(r, http.MethodPost, "/api/search", body, nil)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite invalid piggybacked feedback", w.Code)
	}
}

func TestFeedbackEndpoint(t *testing.T) {
	service := &stubService{}
	r := newTestRouter(service)

	w := doRequest(r, http.MethodPost, "/api/search/feedback",
		`{"query":"react","resultId":"Alice Chen","rating":4}`,
		map[string]string{"X-User-ID": "user-1"})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	if service.lastFeedback == nil || service.lastFeedback.Rating != 4 {
		t.Errorf("feedback = %+v, want rating 4 recorded", service.lastFeedback)
	}
}

func TestFeedbackEndpointRequiresRating(t *testing.T) {
	service := &stubService{}
	r := newTestRouter(service)

	w := doRequest(r, http.MethodPost, "/api/search/feedback",
		`{"query":"react","resultId":"Alice Chen"}`, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
	if service.feedbackCalls != 0 {
		t.Errorf("feedback recorded %d times, want 0", service.feedbackCalls)
	}
}

func TestFeedbackEndpointInvalidRating(t *testing.T) {
	service := &stubService{
		feedbackErr: fmt.Errorf("%w: rating must be between 1 and 5", search.ErrInvalidRequest),
	}
	r := newTestRouter(service)

	w := doRequest(r, http.MethodPost, "/api/search/feedback",
		`{"query":"react","resultId":"Alice Chen","rating":9}`, nil)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(&stubService{})

	w := doRequest(r, http.MethodGet, "/api/search/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var status search.HealthStatus
	if err := json.Unmarshal(w.Body.Bytes(), &status); err != nil {
		t.Fatalf("failed to decode health body: %v", err)
	}
	if status.Status != "ok" || !status.Generator.Available {
		t.Errorf("health = %+v, want ok with generator available", status)
	}
}
