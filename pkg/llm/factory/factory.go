package factory

import (
	"fmt"
	"time"

	"ai-llm-demos-be/pkg/llm"
	"ai-llm-demos-be/pkg/llm/ollama"
	"ai-llm-demos-be/pkg/llm/openai"
)

type Params struct {
	Provider    string // "ollama" or "openai"
	Model       string
	BaseURL     string
	ApiKey      string
	Temperature float64
	Timeout     time.Duration
}

func NewLLMProvider(p Params) (llm.LLMProvider, error) {
	switch p.Provider {
	case "ollama":
		baseURL := p.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434" // Default
		}
		return ollama.NewOllamaProvider(baseURL, p.Model, p.Temperature, p.Timeout), nil
	case "openai", "huggingface":
		// HuggingFace's router speaks the OpenAI protocol; only the base URL differs.
		if p.ApiKey == "" {
			return nil, fmt.Errorf("%s provider requires an api key", p.Provider)
		}
		return openai.NewProvider(p.ApiKey, p.BaseURL, p.Model, p.Temperature, p.Timeout)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", p.Provider)
	}
}
