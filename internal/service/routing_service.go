package service

import (
	"context"
	"fmt"
	"strings"

	"ai-llm-demos-be/internal/constant"
	"ai-llm-demos-be/internal/dto"
	"ai-llm-demos-be/internal/mapper"
	"ai-llm-demos-be/internal/pkg/logger"
	"ai-llm-demos-be/internal/pkg/metrics"
	"ai-llm-demos-be/pkg/inventory"
	"ai-llm-demos-be/pkg/llm"
	"ai-llm-demos-be/pkg/routing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	VariantSimple    = "simple_llm"
	VariantReasoning = "reasoning_llm"
	VariantTools     = "function_calling"
)

// IRoutingService asks the model to pick a network path for a service request.
// The chosen path is returned as-is; it is not checked against the topology.
type IRoutingService interface {
	RouteWithSimpleLLM(ctx context.Context, request string) (*dto.RouteResponse, error)
	RouteWithReasoningLLM(ctx context.Context, request string) (*dto.RouteResponse, error)
	RouteWithFunctionCalling(ctx context.Context, request string) (*dto.RouteResponse, error)
}

type routingService struct {
	inventory     inventory.IClient
	llmProvider   llm.LLMProvider
	mapper        *mapper.RoutingMapper
	logger        logger.ILogger
	maxToolRounds int
}

func NewRoutingService(inv inventory.IClient, llmProvider llm.LLMProvider, log logger.ILogger, maxToolRounds int) IRoutingService {
	return &routingService{
		inventory:     inv,
		llmProvider:   llmProvider,
		mapper:        mapper.NewRoutingMapper(),
		logger:        log,
		maxToolRounds: maxToolRounds,
	}
}

func (s *routingService) RouteWithSimpleLLM(ctx context.Context, request string) (*dto.RouteResponse, error) {
	return s.observe(ctx, VariantSimple, request, func(ctx context.Context) (string, error) {
		return s.withContext(ctx, constant.RoutingSimplePrompt, request)
	})
}

func (s *routingService) RouteWithReasoningLLM(ctx context.Context, request string) (*dto.RouteResponse, error) {
	return s.observe(ctx, VariantReasoning, request, func(ctx context.Context) (string, error) {
		return s.withContext(ctx, constant.RoutingReasoningPrompt, request)
	})
}

func (s *routingService) RouteWithFunctionCalling(ctx context.Context, request string) (*dto.RouteResponse, error) {
	return s.observe(ctx, VariantTools, request, func(ctx context.Context) (string, error) {
		toolProvider, ok := s.llmProvider.(llm.ToolCallingProvider)
		if !ok {
			return "", llm.ErrToolsUnsupported
		}

		toolset := routing.NewToolset(s.inventory, func(tool, outcome string) {
			metrics.RecordToolCall(tool, outcome)
			if outcome == routing.OutcomeRejected {
				s.logger.Warn("ROUTING", "Rejected repeated tool call", map[string]interface{}{"tool": tool})
			}
		})

		history := []llm.Message{
			{Role: llm.RoleSystem, Content: constant.RoutingToolPrompt},
			{Role: llm.RoleUser, Content: request},
		}

		var opts []llm.Option
		if s.maxToolRounds > 0 {
			opts = append(opts, llm.WithMaxToolRounds(s.maxToolRounds))
		}
		reply, err := toolProvider.ChatWithTools(ctx, history, toolset.Tools(), opts...)
		if err != nil {
			return "", err
		}

		if unused := toolset.Unused(); len(unused) > 0 {
			s.logger.Warn("ROUTING", "Model answered without calling every tool", map[string]interface{}{
				"unused": unused,
			})
		}
		return reply, nil
	})
}

// withContext prefetches devices and topology and injects them into the system prompt.
func (s *routingService) withContext(ctx context.Context, template, request string) (string, error) {
	devices, err := s.inventory.FetchDevices(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch devices: %w", err)
	}
	topology, err := s.inventory.FetchTopology(ctx)
	if err != nil {
		return "", fmt.Errorf("fetch network topology: %w", err)
	}
	s.logger.Debug("ROUTING", "Fetched inventory context", map[string]interface{}{
		"devices_bytes":  len(devices),
		"topology_bytes": len(topology),
	})

	system := strings.NewReplacer(
		constant.RoutingPlaceholderDevices, devices,
		constant.RoutingPlaceholderTopology, topology,
	).Replace(template)

	return s.llmProvider.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: system},
		{Role: llm.RoleUser, Content: request},
	})
}

func (s *routingService) observe(ctx context.Context, variant, request string, run func(context.Context) (string, error)) (*dto.RouteResponse, error) {
	ctx, span := otel.Tracer("routing-agent").Start(ctx, "Route")
	defer span.End()
	span.SetAttributes(attribute.String("routing.variant", variant))

	s.logger.Info("ROUTING", "Performing routing", map[string]interface{}{
		"variant": variant,
		"request": request,
	})

	result, err := s.route(ctx, run)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		metrics.RecordRouting(variant, "error")
		s.logger.Error("ROUTING", "Routing failed", map[string]interface{}{
			"variant": variant,
			"error":   err.Error(),
		})
		return nil, err
	}

	span.SetAttributes(attribute.Int("routing.path_length", len(result.SelectedPath)))
	metrics.RecordRouting(variant, "ok")
	s.logger.Info("ROUTING", "LLM response", map[string]interface{}{
		"variant":       variant,
		"selected_path": result.SelectedPath,
	})
	return s.mapper.ToRouteResponse(result), nil
}

func (s *routingService) route(ctx context.Context, run func(context.Context) (string, error)) (*routing.RouteResponse, error) {
	reply, err := run(ctx)
	if err != nil {
		return nil, err
	}
	return routing.ParseRouteResponse(reply)
}
