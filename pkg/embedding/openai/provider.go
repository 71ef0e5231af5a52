// Package openai embeds text through any OpenAI-compatible /embeddings endpoint
// using langchaingo.
package openai

import (
	"context"
	"errors"
	"fmt"

	"ai-llm-demos-be/pkg/embedding"

	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

// EmbeddingClient is the subset of the langchaingo OpenAI client used here.
type EmbeddingClient interface {
	CreateEmbedding(ctx context.Context, inputTexts []string) ([][]float32, error)
}

type Provider struct {
	client EmbeddingClient
}

var (
	_ embedding.EmbeddingProvider      = &Provider{}
	_ embedding.BatchEmbeddingProvider = &Provider{}
)

func NewProvider(apiKey, baseURL, model string) (*Provider, error) {
	if model == "" {
		model = "text-embedding-3-small"
	}
	opts := []lcopenai.Option{
		lcopenai.WithToken(apiKey),
		lcopenai.WithEmbeddingModel(model),
	}
	if baseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(baseURL))
	}

	client, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai embedding client: %w", err)
	}
	return &Provider{client: client}, nil
}

// NewProviderWithClient is used by tests to inject a fake client.
func NewProviderWithClient(client EmbeddingClient) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	vectors, err := p.GenerateBatch(ctx, []string{text}, taskType)
	if err != nil {
		return nil, err
	}
	return embedding.NewEmbeddingResponse(vectors[0]), nil
}

func (p *Provider) GenerateBatch(ctx context.Context, texts []string, _ string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, errors.New("no texts to embed")
	}
	vectors, err := p.client.CreateEmbedding(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("openai embeddings failed: %w", err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("openai embeddings returned %d vectors for %d texts", len(vectors), len(texts))
	}
	for i := range vectors {
		vectors[i] = embedding.NormalizeVector(vectors[i])
	}
	return vectors, nil
}
