package jina

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"resumatch/src/core/search"
)

const (
	DefaultURL   = "https://api.jina.ai/v1/embeddings"
	DefaultModel = "jina-embeddings-v4"
)

// Client calls the Jina embeddings API. It implements the pipeline's
// EmbeddingProvider contract directly: Jina accepts batches natively.
type Client struct {
	httpClient *http.Client
	url        string
	apiKey     string
	model      string
	dimensions int
}

func NewClient(url, apiKey, model string, dimensions int, c *http.Client) *Client {
	if url == "" {
		url = DefaultURL
	}
	if model == "" {
		model = DefaultModel
	}

	return &Client{
		httpClient: c,
		url:        url,
		apiKey:     apiKey,
		model:      model,
		dimensions: dimensions,
	}
}

type embeddingInput struct {
	Text string `json:"text"`
}

type embeddingRequest struct {
	Model      string           `json:"model"`
	Task       string           `json:"task"`
	Dimensions int              `json:"dimensions,omitempty"`
	Input      []embeddingInput `json:"input"`
}

type embeddingData struct {
	Embedding []float32 `json:"embedding"`
}

type embeddingResponse struct {
	Data []embeddingData `json:"data"`
}

// Embed returns one vector per input text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	input := make([]embeddingInput, len(texts))
	for i, text := range texts {
		input[i] = embeddingInput{Text: text}
	}

	reqBody := embeddingRequest{
		Model:      c.model,
		Task:       "text-matching",
		Dimensions: c.dimensions,
		Input:      input,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", search.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: jina returned status %d", search.ErrEmbeddingUnavailable, resp.StatusCode)
	}

	var result embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	if len(result.Data) != len(texts) {
		return nil, fmt.Errorf("jina returned %d embeddings for %d inputs", len(result.Data), len(texts))
	}

	vectors := make([][]float32, len(result.Data))
	for i, data := range result.Data {
		vectors[i] = data.Embedding
	}

	return vectors, nil
}
