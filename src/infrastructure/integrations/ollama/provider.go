package ollama

import (
	"context"
	"fmt"

	"resumatch/src/core/search"
)

// Provider adapts the Ollama client to the pipeline's embedding and
// generation contracts.
type Provider struct {
	client         *Client
	model          string
	embeddingModel string
}

func NewProvider(client *Client, model, embeddingModel string) *Provider {
	return &Provider{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
	}
}

// Embed generates one vector per text, in order.
func (p *Provider) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vector, err := p.client.GetEmbedding(ctx, p.embeddingModel, text)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", search.ErrEmbeddingUnavailable, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// Generate produces a completion with moderate sampling settings.
func (p *Provider) Generate(ctx context.Context, prompt string) (string, error) {
	response, err := p.client.Generate(ctx, p.model, prompt, map[string]interface{}{
		"temperature": 0.7,
		"top_p":       0.9,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", search.ErrGenerationUnavailable, err)
	}
	return response, nil
}

func (p *Provider) IsAvailable(ctx context.Context) bool {
	return p.client.IsAvailable(ctx)
}

func (p *Provider) Model() string {
	return p.model
}

func (p *Provider) BaseURL() string {
	return p.client.BaseURL()
}
