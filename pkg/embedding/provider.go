package embedding

import (
	"context"
	"fmt"
)

// Gemini task types. Other providers ignore them.
const (
	TaskTypeDocument = "RETRIEVAL_DOCUMENT"
	TaskTypeQuery    = "RETRIEVAL_QUERY"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Generate(ctx context.Context, text string, taskType string) (*EmbeddingResponse, error)
}

// BatchEmbeddingProvider is implemented by providers that can embed several texts in one request.
type BatchEmbeddingProvider interface {
	GenerateBatch(ctx context.Context, texts []string, taskType string) ([][]float32, error)
}

// GenerateAll embeds texts in order, using a single batch request when the provider supports it.
func GenerateAll(ctx context.Context, p EmbeddingProvider, texts []string, taskType string) ([][]float32, error) {
	if batcher, ok := p.(BatchEmbeddingProvider); ok {
		vectors, err := batcher.GenerateBatch(ctx, texts, taskType)
		if err != nil {
			return nil, err
		}
		if len(vectors) != len(texts) {
			return nil, fmt.Errorf("embedding batch returned %d vectors for %d texts", len(vectors), len(texts))
		}
		return vectors, nil
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		res, err := p.Generate(ctx, text, taskType)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		vectors[i] = res.Embedding.Values
	}
	return vectors, nil
}
