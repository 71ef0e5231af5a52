// Package breaker guards an llm.LLMProvider with a circuit breaker so a failing
// upstream model stops receiving traffic for a cool-down period.
package breaker

import (
	"context"
	"errors"
	"time"

	"ai-llm-demos-be/pkg/llm"

	"github.com/sony/gobreaker"
)

// ErrBreakerOpen is returned while the breaker rejects calls.
var ErrBreakerOpen = errors.New("llm circuit breaker is open")

type Settings struct {
	Name        string
	MaxFailures int
	OpenTimeout time.Duration
	// OnStateChange is optional. Used for logging transitions.
	OnStateChange func(name string, from, to string)
}

type Provider struct {
	inner llm.LLMProvider
	cb    *gobreaker.CircuitBreaker
}

type ToolProvider struct {
	*Provider
	tools llm.ToolCallingProvider
}

// Wrap returns a breaker-guarded provider. If inner supports tool calling the
// result does too.
func Wrap(inner llm.LLMProvider, s Settings) llm.LLMProvider {
	p := newProvider(inner, s)
	if tools, ok := inner.(llm.ToolCallingProvider); ok {
		return &ToolProvider{Provider: p, tools: tools}
	}
	return p
}

func newProvider(inner llm.LLMProvider, s Settings) *Provider {
	maxFailures := s.MaxFailures
	if maxFailures <= 0 {
		maxFailures = 5
	}
	name := s.Name
	if name == "" {
		name = "llm"
	}

	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		// Caller cancellation says nothing about the upstream's health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
	}
	if s.OnStateChange != nil {
		settings.OnStateChange = func(name string, from, to gobreaker.State) {
			s.OnStateChange(name, from.String(), to.String())
		}
	}

	return &Provider{inner: inner, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (p *Provider) Chat(ctx context.Context, history []llm.Message, opts ...llm.Option) (string, error) {
	return p.execute(func() (string, error) {
		return p.inner.Chat(ctx, history, opts...)
	})
}

func (p *Provider) Generate(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	return p.execute(func() (string, error) {
		return p.inner.Generate(ctx, prompt, opts...)
	})
}

func (p *ToolProvider) ChatWithTools(ctx context.Context, history []llm.Message, tools []llm.Tool, opts ...llm.Option) (string, error) {
	return p.execute(func() (string, error) {
		return p.tools.ChatWithTools(ctx, history, tools, opts...)
	})
}

// State reports the current breaker state ("closed", "open" or "half-open").
func (p *Provider) State() string {
	return p.cb.State().String()
}

func (p *Provider) execute(fn func() (string, error)) (string, error) {
	out, err := p.cb.Execute(func() (interface{}, error) {
		return fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return "", ErrBreakerOpen
	}
	if err != nil {
		return "", err
	}
	return out.(string), nil
}
