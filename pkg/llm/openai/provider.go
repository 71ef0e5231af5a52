// Package openai adapts langchaingo's OpenAI client (any OpenAI-compatible
// endpoint, including the HuggingFace router) to llm.ToolCallingProvider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"ai-llm-demos-be/pkg/llm"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"
)

const defaultMaxToolRounds = 6

type Provider struct {
	model       llms.Model
	temperature float64
}

var _ llm.ToolCallingProvider = &Provider{}

func NewProvider(apiKey, baseURL, model string, temperature float64, timeout time.Duration) (*Provider, error) {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	opts := []lcopenai.Option{
		lcopenai.WithToken(apiKey),
		lcopenai.WithModel(model),
		lcopenai.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if baseURL != "" {
		opts = append(opts, lcopenai.WithBaseURL(baseURL))
	}

	client, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai client: %w", err)
	}
	return NewProviderWithModel(client, temperature), nil
}

// NewProviderWithModel wraps an existing langchaingo model. Tests use it with fakes.
func NewProviderWithModel(model llms.Model, temperature float64) *Provider {
	return &Provider{model: model, temperature: temperature}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: p.temperature}, opts...)

	choice, err := p.generate(ctx, toMessageContents(history), callOptions(options))
	if err != nil {
		return "", err
	}
	return choice.Content, nil
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// ChatWithTools lets the model call tools until it answers without a tool call.
// Handler errors are reported back to the model as the tool result.
func (p *Provider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.Tool, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: p.temperature, MaxToolRounds: defaultMaxToolRounds}, opts...)

	handlers := make(map[string]llm.Tool, len(tools))
	definitions := make([]llms.Tool, 0, len(tools))
	for _, tool := range tools {
		handlers[tool.Name] = tool
		definitions = append(definitions, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	messages := toMessageContents(history)
	callOpts := append(callOptions(options), llms.WithTools(definitions))

	for round := 0; round < options.MaxToolRounds; round++ {
		choice, err := p.generate(ctx, messages, callOpts)
		if err != nil {
			return "", err
		}
		if len(choice.ToolCalls) == 0 {
			return choice.Content, nil
		}

		assistant := llms.MessageContent{Role: llms.ChatMessageTypeAI}
		for _, call := range choice.ToolCalls {
			assistant.Parts = append(assistant.Parts, call)
		}
		messages = append(messages, assistant)

		for _, call := range choice.ToolCalls {
			messages = append(messages, llms.MessageContent{
				Role: llms.ChatMessageTypeTool,
				Parts: []llms.ContentPart{
					llms.ToolCallResponse{
						ToolCallID: call.ID,
						Name:       toolName(call),
						Content:    invoke(ctx, handlers, call),
					},
				},
			})
		}
	}

	return "", llm.ErrToolRoundsExceeded
}

func (p *Provider) generate(ctx context.Context, messages []llms.MessageContent, opts []llms.CallOption) (*llms.ContentChoice, error) {
	resp, err := p.model.GenerateContent(ctx, messages, opts...)
	if err != nil {
		return nil, fmt.Errorf("openai request failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return nil, errors.New("empty choices from openai api")
	}
	return resp.Choices[0], nil
}

func invoke(ctx context.Context, handlers map[string]llm.Tool, call llms.ToolCall) string {
	name := toolName(call)
	tool, ok := handlers[name]
	if !ok || tool.Handler == nil {
		return fmt.Sprintf(`{"error": "unknown tool %q"}`, name)
	}

	arguments := "{}"
	if call.FunctionCall != nil && call.FunctionCall.Arguments != "" {
		arguments = call.FunctionCall.Arguments
	}

	out, err := tool.Handler(ctx, arguments)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return out
}

func toolName(call llms.ToolCall) string {
	if call.FunctionCall == nil {
		return ""
	}
	return call.FunctionCall.Name
}

func callOptions(options *llm.Options) []llms.CallOption {
	opts := []llms.CallOption{llms.WithTemperature(options.Temperature)}
	if options.Model != "" {
		opts = append(opts, llms.WithModel(options.Model))
	}
	if options.MaxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(options.MaxTokens))
	}
	if options.JSONFormat {
		opts = append(opts, llms.WithJSONMode())
	}
	return opts
}

func toMessageContents(history []llm.Message) []llms.MessageContent {
	messages := make([]llms.MessageContent, 0, len(history))
	for _, msg := range history {
		messages = append(messages, llms.TextParts(roleOf(msg.Role), msg.Content))
	}
	return messages
}

func roleOf(role string) llms.ChatMessageType {
	switch role {
	case llm.RoleSystem:
		return llms.ChatMessageTypeSystem
	case llm.RoleAssistant, "model":
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
