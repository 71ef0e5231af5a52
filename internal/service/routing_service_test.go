package service

import (
	"context"
	"errors"
	"testing"

	"ai-llm-demos-be/internal/pkg/logger"
	"ai-llm-demos-be/pkg/inventory"
	"ai-llm-demos-be/pkg/llm"
	"ai-llm-demos-be/pkg/routing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const routeReply = `{"motivation":"dpu-1 is the only qualified device; 1 -> 2 is a direct edge","selectedPath":["1","2"]}`

func TestRouteWithContextVariantsInjectInventory(t *testing.T) {
	for _, variant := range []string{VariantSimple, VariantReasoning} {
		t.Run(variant, func(t *testing.T) {
			inv := &stubInventory{}
			llmStub := &stubLLM{reply: "```json\n" + routeReply + "\n```"}
			svc := NewRoutingService(inv, llmStub, logger.NewNopLogger(), 6)

			route := svc.RouteWithSimpleLLM
			if variant == VariantReasoning {
				route = svc.RouteWithReasoningLLM
			}
			res, err := route(context.Background(), "Stream 4 cameras at 100 MB/s")
			require.NoError(t, err)
			assert.Equal(t, []string{"1", "2"}, res.SelectedPath)

			require.Len(t, llmStub.history, 1)
			msgs := llmStub.history[0]
			require.Len(t, msgs, 2)
			assert.Equal(t, llm.RoleSystem, msgs[0].Role)
			assert.Contains(t, msgs[0].Content, `"manual_text":"100GbE"`)
			assert.Contains(t, msgs[0].Content, `"connections":[{"from":"1","to":"2"}]`)
			assert.NotContains(t, msgs[0].Content, "{{devices}}")
			assert.Equal(t, "Stream 4 cameras at 100 MB/s", msgs[1].Content)
		})
	}
}

func TestRouteInventoryFailure(t *testing.T) {
	inv := &stubInventory{err: inventory.ErrUnavailable}
	llmStub := &stubLLM{reply: routeReply}
	svc := NewRoutingService(inv, llmStub, logger.NewNopLogger(), 6)

	_, err := svc.RouteWithSimpleLLM(context.Background(), "anything")
	assert.ErrorIs(t, err, inventory.ErrUnavailable)
	assert.Empty(t, llmStub.history)
}

func TestRouteInvalidReply(t *testing.T) {
	svc := NewRoutingService(&stubInventory{}, &stubLLM{reply: "no idea"}, logger.NewNopLogger(), 6)

	_, err := svc.RouteWithReasoningLLM(context.Background(), "anything")
	assert.ErrorIs(t, err, routing.ErrInvalidRouteReply)
}

func TestRouteWithFunctionCallingEnforcesSingleUse(t *testing.T) {
	inv := &stubInventory{}
	model := &toolLLM{
		stubLLM: stubLLM{reply: routeReply},
		script: []scriptedCall{
			{tool: "fetch_devices", args: "{}"},
			{tool: "route", args: `{"device_ids":["dpu-1"]}`},
			{tool: "route", args: `{"device_ids":["dpu-1","sw-2"]}`},
		},
	}
	svc := NewRoutingService(inv, model, logger.NewNopLogger(), 6)

	res, err := svc.RouteWithFunctionCalling(context.Background(), "Stream 4 cameras")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, res.SelectedPath)

	assert.Equal(t, 1, inv.devicesCalls)
	assert.Equal(t, 1, inv.routeCalls)
	require.Len(t, model.errs, 3)
	assert.NoError(t, model.errs[0])
	assert.NoError(t, model.errs[1])
	assert.ErrorIs(t, model.errs[2], routing.ErrToolAlreadyCalled)

	msgs := model.history[0]
	assert.NotContains(t, msgs[0].Content, "{{devices}}")
	assert.Contains(t, msgs[0].Content, "fetch_devices")
}

func TestRouteWithFunctionCallingWarnsOnUnusedTools(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	model := &toolLLM{stubLLM: stubLLM{reply: routeReply}}
	svc := NewRoutingService(&stubInventory{}, model, logger.NewWithCore(core), 6)

	_, err := svc.RouteWithFunctionCalling(context.Background(), "anything")
	require.NoError(t, err)

	warned := logs.FilterMessage("Model answered without calling every tool")
	assert.Equal(t, 1, warned.Len())
}

func TestRouteWithFunctionCallingNeedsToolSupport(t *testing.T) {
	svc := NewRoutingService(&stubInventory{}, &stubLLM{reply: routeReply}, logger.NewNopLogger(), 6)

	_, err := svc.RouteWithFunctionCalling(context.Background(), "anything")
	assert.ErrorIs(t, err, llm.ErrToolsUnsupported)
}

func TestRouteLLMFailurePropagates(t *testing.T) {
	boom := errors.New("model offline")
	svc := NewRoutingService(&stubInventory{}, &stubLLM{err: boom}, logger.NewNopLogger(), 6)

	_, err := svc.RouteWithSimpleLLM(context.Background(), "anything")
	assert.ErrorIs(t, err, boom)
}
