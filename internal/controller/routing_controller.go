package controller

import (
	"context"
	"errors"

	"ai-llm-demos-be/internal/dto"
	"ai-llm-demos-be/internal/pkg/serverutils"
	"ai-llm-demos-be/internal/service"
	"ai-llm-demos-be/pkg/llm"

	"github.com/gofiber/fiber/v2"
)

type IRoutingController interface {
	RegisterRoutes(r fiber.Router)
	RouteWithSimpleLLM(ctx *fiber.Ctx) error
	RouteWithReasoningLLM(ctx *fiber.Ctx) error
	RouteWithFunctionCalling(ctx *fiber.Ctx) error
}

type routingController struct {
	routingService service.IRoutingService
}

func NewRoutingController(routingService service.IRoutingService) IRoutingController {
	return &routingController{routingService: routingService}
}

func (c *routingController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ai4ne")
	h.Post("/simple_llm", c.RouteWithSimpleLLM)
	h.Post("/reasoning_llm", c.RouteWithReasoningLLM)
	h.Post("/function_calling", c.RouteWithFunctionCalling)
}

func (c *routingController) RouteWithSimpleLLM(ctx *fiber.Ctx) error {
	return c.handle(ctx, c.routingService.RouteWithSimpleLLM)
}

func (c *routingController) RouteWithReasoningLLM(ctx *fiber.Ctx) error {
	return c.handle(ctx, c.routingService.RouteWithReasoningLLM)
}

func (c *routingController) RouteWithFunctionCalling(ctx *fiber.Ctx) error {
	return c.handle(ctx, c.routingService.RouteWithFunctionCalling)
}

func (c *routingController) handle(ctx *fiber.Ctx, route func(context.Context, string) (*dto.RouteResponse, error)) error {
	var req dto.RouteRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := route(ctx.UserContext(), req.Request)
	if err != nil {
		if errors.Is(err, llm.ErrToolsUnsupported) {
			return fiber.NewError(fiber.StatusNotImplemented, err.Error())
		}
		return serverutils.NewGatewayError(err)
	}
	return ctx.JSON(res)
}
