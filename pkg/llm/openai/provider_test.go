package openai

import (
	"context"
	"errors"
	"testing"

	"ai-llm-demos-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

// scriptedModel replays a fixed list of choices and records every request.
type scriptedModel struct {
	replies  []*llms.ContentChoice
	requests [][]llms.MessageContent
	err      error
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.requests = append(m.requests, append([]llms.MessageContent(nil), messages...))
	if len(m.replies) == 0 {
		return &llms.ContentResponse{}, nil
	}
	next := m.replies[0]
	m.replies = m.replies[1:]
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{next}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func toolCall(id, name, args string) llms.ToolCall {
	return llms.ToolCall{ID: id, Type: "function", FunctionCall: &llms.FunctionCall{Name: name, Arguments: args}}
}

func TestChatMapsRoles(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{{Content: "hello"}}}
	p := NewProviderWithModel(model, 0)

	out, err := p.Chat(context.Background(), []llm.Message{
		{Role: llm.RoleSystem, Content: "be brief"},
		{Role: llm.RoleUser, Content: "hi"},
		{Role: llm.RoleAssistant, Content: "hey"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	require.Len(t, model.requests, 1)
	sent := model.requests[0]
	assert.Equal(t, llms.ChatMessageTypeSystem, sent[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, sent[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, sent[2].Role)
}

func TestChatEmptyChoices(t *testing.T) {
	p := NewProviderWithModel(&scriptedModel{}, 0)

	_, err := p.Generate(context.Background(), "hi")
	assert.ErrorContains(t, err, "empty choices")
}

func TestChatWrapsTransportError(t *testing.T) {
	boom := errors.New("boom")
	p := NewProviderWithModel(&scriptedModel{err: boom}, 0)

	_, err := p.Generate(context.Background(), "hi")
	assert.ErrorIs(t, err, boom)
}

func TestChatWithToolsRunsHandlersAndFeedsResults(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{
		{ToolCalls: []llms.ToolCall{toolCall("c1", "fetch_devices", "")}},
		{ToolCalls: []llms.ToolCall{toolCall("c2", "route", `{"device_ids":["a","b"]}`)}},
		{Content: "done"},
	}}
	p := NewProviderWithModel(model, 0)

	var gotArgs []string
	handler := func(_ context.Context, args string) (string, error) {
		gotArgs = append(gotArgs, args)
		return `{"ok":true}`, nil
	}
	tools := []llm.Tool{
		{Name: "fetch_devices", Handler: handler},
		{Name: "route", Handler: handler},
	}

	out, err := p.ChatWithTools(context.Background(), []llm.Message{{Role: llm.RoleUser, Content: "route me"}}, tools)
	require.NoError(t, err)
	assert.Equal(t, "done", out)
	assert.Equal(t, []string{"{}", `{"device_ids":["a","b"]}`}, gotArgs)

	require.Len(t, model.requests, 3)
	last := model.requests[2]
	// user, ai(call1), tool(resp1), ai(call2), tool(resp2)
	require.Len(t, last, 5)
	resp, ok := last[4].Parts[0].(llms.ToolCallResponse)
	require.True(t, ok)
	assert.Equal(t, "c2", resp.ToolCallID)
	assert.Equal(t, "route", resp.Name)
	assert.Equal(t, `{"ok":true}`, resp.Content)
}

func TestChatWithToolsReportsHandlerErrors(t *testing.T) {
	model := &scriptedModel{replies: []*llms.ContentChoice{
		{ToolCalls: []llms.ToolCall{toolCall("c1", "route", "{}"), toolCall("c2", "missing", "{}")}},
		{Content: "fine"},
	}}
	p := NewProviderWithModel(model, 0)

	tools := []llm.Tool{{Name: "route", Handler: func(context.Context, string) (string, error) {
		return "", errors.New("inventory down")
	}}}

	out, err := p.ChatWithTools(context.Background(), nil, tools)
	require.NoError(t, err)
	assert.Equal(t, "fine", out)

	second := model.requests[1]
	routeResp := second[1].Parts[0].(llms.ToolCallResponse)
	assert.Contains(t, routeResp.Content, "inventory down")
	missingResp := second[2].Parts[0].(llms.ToolCallResponse)
	assert.Contains(t, missingResp.Content, "unknown tool")
}

func TestChatWithToolsStopsAfterMaxRounds(t *testing.T) {
	looping := &llms.ContentChoice{ToolCalls: []llms.ToolCall{toolCall("c", "route", "{}")}}
	model := &scriptedModel{replies: []*llms.ContentChoice{looping, looping, looping}}
	p := NewProviderWithModel(model, 0)

	tools := []llm.Tool{{Name: "route", Handler: func(context.Context, string) (string, error) { return "{}", nil }}}

	_, err := p.ChatWithTools(context.Background(), nil, tools, llm.WithMaxToolRounds(2))
	assert.ErrorIs(t, err, llm.ErrToolRoundsExceeded)
	assert.Len(t, model.requests, 2)
}
