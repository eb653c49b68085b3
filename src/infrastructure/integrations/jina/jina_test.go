package jina_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"resumatch/src/core/search"
	"resumatch/src/infrastructure/integrations/jina"
)

func TestEmbed(t *testing.T) {
	var gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{0.1, 0.2}},
				{"embedding": []float32{0.3, 0.4}},
			},
		})
	}))
	defer srv.Close()

	client := jina.NewClient(srv.URL, "secret", "jina-embeddings-v4", 1024, srv.Client())

	vectors, err := client.Embed(context.Background(), []string{"react developer", "python engineer"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}

	if len(vectors) != 2 || len(vectors[0]) != 2 {
		t.Errorf("vectors = %v, want 2 vectors of 2 dims", vectors)
	}
	if gotAuth != "Bearer secret" {
		t.Errorf("Authorization = %q, want bearer token", gotAuth)
	}
	if gotBody["task"] != "text-matching" {
		t.Errorf("task = %v, want text-matching", gotBody["task"])
	}
	if gotBody["model"] != "jina-embeddings-v4" {
		t.Errorf("model = %v, want jina-embeddings-v4", gotBody["model"])
	}
	if input, ok := gotBody["input"].([]interface{}); !ok || len(input) != 2 {
		t.Errorf("input = %v, want 2 text objects", gotBody["input"])
	}
}

func TestEmbedNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := jina.NewClient(srv.URL, "secret", "", 0, srv.Client())

	_, err := client.Embed(context.Background(), []string{"react"})
	if !errors.Is(err, search.ErrEmbeddingUnavailable) {
		t.Errorf("Embed() error = %v, want ErrEmbeddingUnavailable", err)
	}
}

func TestEmbedCountMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{{"embedding": []float32{0.1}}},
		})
	}))
	defer srv.Close()

	client := jina.NewClient(srv.URL, "secret", "", 0, srv.Client())

	if _, err := client.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Error("Embed() error = nil, want count mismatch error")
	}
}
