package controller

import (
	"ai-llm-demos-be/internal/dto"
	"ai-llm-demos-be/internal/pkg/serverutils"
	"ai-llm-demos-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IEssayController interface {
	RegisterRoutes(r fiber.Router)
	ScoreEssay(ctx *fiber.Ctx) error
}

type essayController struct {
	scoringService service.IScoringService
}

func NewEssayController(scoringService service.IScoringService) IEssayController {
	return &essayController{scoringService: scoringService}
}

func (c *essayController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/ai")
	h.Post("/scoreEssay", c.ScoreEssay)
}

func (c *essayController) ScoreEssay(ctx *fiber.Ctx) error {
	var req dto.EssayRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Malformed request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	if req.TaskType == "" {
		req.TaskType = service.DefaultTaskType
	}

	return ctx.JSON(c.scoringService.ScoreEssay(ctx.UserContext(), &req))
}
