package llm

import (
	"context"
	"errors"
)

var (
	// ErrToolsUnsupported is returned when a tool-calling flow is requested from a provider without tool support.
	ErrToolsUnsupported = errors.New("llm provider does not support tool calling")
	// ErrToolRoundsExceeded is returned when the model keeps requesting tools past the configured limit.
	ErrToolRoundsExceeded = errors.New("llm exceeded the maximum number of tool rounds")
)

// Message represents a chat message in a provider-agnostic format
type Message struct {
	Role    string `json:"role"` // "user", "assistant", "system"
	Content string `json:"content"`
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Option allows for optional parameters like Temperature, MaxTokens, etc.
type Option func(*Options)

type Options struct {
	Temperature   float64
	MaxTokens     int
	Model         string // Override default model
	MaxToolRounds int
	JSONFormat    bool
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithMaxTokens(tokens int) Option {
	return func(o *Options) {
		o.MaxTokens = tokens
	}
}

// WithMaxToolRounds caps how many model turns may request tools before giving up.
func WithMaxToolRounds(rounds int) Option {
	return func(o *Options) {
		o.MaxToolRounds = rounds
	}
}

// WithJSONFormat asks the backend to constrain the reply to a JSON object.
func WithJSONFormat() Option {
	return func(o *Options) {
		o.JSONFormat = true
	}
}

// ApplyOptions resolves opts on top of defaults.
func ApplyOptions(defaults Options, opts ...Option) *Options {
	options := defaults
	for _, opt := range opts {
		opt(&options)
	}
	return &options
}

// LLMProvider defines the contract for any LLM backend
type LLMProvider interface {
	// Chat sends a chat history to the model and returns the response
	Chat(ctx context.Context, history []Message, options ...Option) (string, error)

	// Generate sends a single prompt to the model (convenience method)
	Generate(ctx context.Context, prompt string, options ...Option) (string, error)
}

// ToolHandler executes a tool call. arguments is the raw JSON object produced by the model.
type ToolHandler func(ctx context.Context, arguments string) (string, error)

// Tool is a function the model may call while answering.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]interface{} // JSON schema of the arguments object
	Handler     ToolHandler
}

// ToolCallingProvider runs a tool-use loop until the model produces a final answer.
type ToolCallingProvider interface {
	LLMProvider
	ChatWithTools(ctx context.Context, history []Message, tools []Tool, options ...Option) (string, error)
}
