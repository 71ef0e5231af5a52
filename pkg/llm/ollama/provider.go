package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-llm-demos-be/pkg/llm"
)

const (
	roleTool             = "tool"
	defaultMaxToolRounds = 6
)

// OllamaProvider talks to a local Ollama server over /api/chat, including its
// native tool calling.
type OllamaProvider struct {
	BaseURL     string
	ModelName   string
	Temperature float64
	Client      *http.Client
}

var _ llm.ToolCallingProvider = &OllamaProvider{}

func NewOllamaProvider(baseURL, modelName string, temperature float64, timeout time.Duration) *OllamaProvider {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &OllamaProvider{
		BaseURL:     baseURL,
		ModelName:   modelName,
		Temperature: temperature,
		Client:      &http.Client{Timeout: timeout},
	}
}

type chatRequest struct {
	Model    string          `json:"model"`
	Messages []chatMessage   `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Tools    []toolSpec      `json:"tools,omitempty"`
	Options  *sampleSettings `json:"options,omitempty"`
}

type chatMessage struct {
	Role      string     `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []toolCall `json:"tool_calls,omitempty"`
	ToolName  string     `json:"tool_name,omitempty"`
}

type sampleSettings struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type toolSpec struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolFunction struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
}

// Ollama sends arguments as a JSON object, not an encoded string.
type toolCall struct {
	Function struct {
		Name      string          `json:"name"`
		Arguments json.RawMessage `json:"arguments"`
	} `json:"function"`
}

type chatResponse struct {
	Model   string      `json:"model"`
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

func (o *OllamaProvider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: o.Temperature}, opts...)

	reply, err := o.send(ctx, o.newRequest(toChatMessages(history), options))
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}

func (o *OllamaProvider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
}

// ChatWithTools runs tool calls requested by the model and feeds the results back
// until the model answers in plain content. Handler errors become the tool result.
func (o *OllamaProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.Tool, opts ...llm.Option) (string, error) {
	options := llm.ApplyOptions(llm.Options{Temperature: o.Temperature, MaxToolRounds: defaultMaxToolRounds}, opts...)

	handlers := make(map[string]llm.Tool, len(tools))
	specs := make([]toolSpec, 0, len(tools))
	for _, tool := range tools {
		handlers[tool.Name] = tool
		specs = append(specs, toolSpec{
			Type: "function",
			Function: toolFunction{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	messages := toChatMessages(history)
	for round := 0; round < options.MaxToolRounds; round++ {
		req := o.newRequest(messages, options)
		req.Tools = specs
		// Ollama ignores tool calls when a format constraint is set.
		req.Format = ""

		reply, err := o.send(ctx, req)
		if err != nil {
			return "", err
		}
		if len(reply.ToolCalls) == 0 {
			return reply.Content, nil
		}

		messages = append(messages, chatMessage{
			Role:      llm.RoleAssistant,
			Content:   reply.Content,
			ToolCalls: reply.ToolCalls,
		})
		for _, call := range reply.ToolCalls {
			messages = append(messages, chatMessage{
				Role:     roleTool,
				ToolName: call.Function.Name,
				Content:  invoke(ctx, handlers, call),
			})
		}
	}

	return "", llm.ErrToolRoundsExceeded
}

func invoke(ctx context.Context, handlers map[string]llm.Tool, call toolCall) string {
	tool, ok := handlers[call.Function.Name]
	if !ok || tool.Handler == nil {
		return fmt.Sprintf(`{"error": "unknown tool %q"}`, call.Function.Name)
	}

	arguments := "{}"
	if raw := bytes.TrimSpace(call.Function.Arguments); len(raw) > 0 && !bytes.Equal(raw, []byte("null")) {
		arguments = string(raw)
	}

	out, err := tool.Handler(ctx, arguments)
	if err != nil {
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return out
}

func (o *OllamaProvider) newRequest(messages []chatMessage, options *llm.Options) chatRequest {
	model := o.ModelName
	if options.Model != "" {
		model = options.Model
	}

	req := chatRequest{
		Model:    model,
		Messages: messages,
		Stream:   false,
		Options:  &sampleSettings{Temperature: options.Temperature, NumPredict: options.MaxTokens},
	}
	if options.JSONFormat {
		req.Format = "json"
	}
	return req
}

func (o *OllamaProvider) send(ctx context.Context, payload chatRequest) (*chatMessage, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama error: status %d, body: %s", resp.StatusCode, string(raw))
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if !parsed.Done && parsed.Message.Content == "" && len(parsed.Message.ToolCalls) == 0 {
		return nil, errors.New("ollama returned an empty, unfinished message")
	}
	return &parsed.Message, nil
}

func toChatMessages(history []llm.Message) []chatMessage {
	out := make([]chatMessage, len(history))
	for i, msg := range history {
		role := msg.Role
		if role == "model" {
			role = llm.RoleAssistant
		}
		out[i] = chatMessage{Role: role, Content: msg.Content}
	}
	return out
}
