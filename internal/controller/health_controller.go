package controller

import (
	"ai-llm-demos-be/internal/dto"
	"ai-llm-demos-be/pkg/vectorstore"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

// BreakerState reports the LLM circuit breaker state; nil when no breaker is configured.
type BreakerState func() string

type healthController struct {
	store     vectorstore.VectorStore
	storePath string
	breaker   BreakerState
}

func NewHealthController(store vectorstore.VectorStore, storePath string, breaker BreakerState) IHealthController {
	return &healthController{store: store, storePath: storePath, breaker: breaker}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	res := dto.HealthResponse{
		Status:       "ok",
		StoredEssays: c.store.Count(),
		Persisted:    vectorstore.IsPersisted(c.storePath),
	}
	if c.breaker != nil {
		res.LLMBreaker = c.breaker()
		if res.LLMBreaker == "open" {
			res.Status = "degraded"
		}
	}
	return ctx.JSON(res)
}
