package weaviate

import (
	"context"
	"fmt"

	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"
)

// SDK encapsulates the Weaviate operations the search service needs
type SDK struct {
	client *weaviate.Client
}

// NewSDK creates a new instance of SDK
func NewSDK(client *weaviate.Client) *SDK {
	return &SDK{
		client: client,
	}
}

// resumeProperties is the schema for indexed resume chunks
var resumeProperties = []*models.Property{
	{Name: "name", DataType: []string{"text"}},
	{Name: "filename", DataType: []string{"text"}},
	{Name: "skills", DataType: []string{"text[]"}},
	{Name: "role", DataType: []string{"text"}},
	{Name: "experience", DataType: []string{"text"}},
	{Name: "text", DataType: []string{"text"}},
	{Name: "pageNumber", DataType: []string{"int"}},
	{Name: "chunk", DataType: []string{"int"}},
	{Name: "processedAt", DataType: []string{"date"}},
}

// EnsureSchema creates the resume class if it does not exist yet. Vectors
// are supplied by the ingestion side, so the class carries no vectorizer.
func (w *SDK) EnsureSchema(ctx context.Context, className string) error {
	schema, err := w.client.Schema().Getter().Do(ctx)
	if err != nil {
		return fmt.Errorf("failed to get schema: %v", err)
	}

	for _, class := range schema.Classes {
		if class.Class == className {
			return nil
		}
	}

	class := &models.Class{
		Class:      className,
		Properties: resumeProperties,
		Vectorizer: "none",
	}

	if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
		return fmt.Errorf("failed to create Weaviate class: %v", err)
	}

	return nil
}

// QueryResult represents a single result from vector similarity search
type QueryResult struct {
	ID         string
	Score      float64 // certainty in [0,1]
	Properties map[string]interface{}
}

const DefaultQueryLimit = 20

// QueryVectors performs vector similarity search in a class
func (w *SDK) QueryVectors(ctx context.Context, className string, vector []float32, limit int) ([]QueryResult, error) {
	fields := make([]graphql.Field, 0, len(resumeProperties)+1)
	for _, prop := range resumeProperties {
		fields = append(fields, graphql.Field{Name: prop.Name})
	}
	fields = append(fields, graphql.Field{Name: "_additional { id certainty }"})

	nearVector := w.client.GraphQL().NearVectorArgBuilder().
		WithVector(vector)

	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	result, err := w.client.GraphQL().Get().
		WithClassName(className).
		WithFields(fields...).
		WithNearVector(nearVector).
		WithLimit(limit).
		Do(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to query vectors: %v", err)
	}

	var queryResults []QueryResult
	data, ok := result.Data["Get"].(map[string]interface{})
	if !ok {
		return queryResults, nil
	}
	objects, ok := data[className].([]interface{})
	if !ok {
		return queryResults, nil
	}

	for _, obj := range objects {
		objMap, ok := obj.(map[string]interface{})
		if !ok {
			continue
		}

		var id string
		var score float64
		if additional, ok := objMap["_additional"].(map[string]interface{}); ok {
			id, _ = additional["id"].(string)
			score, _ = additional["certainty"].(float64)
		}

		properties := make(map[string]interface{})
		for k, v := range objMap {
			if k != "_additional" {
				properties[k] = v
			}
		}

		queryResults = append(queryResults, QueryResult{
			ID:         id,
			Score:      score,
			Properties: properties,
		})
	}

	return queryResults, nil
}
