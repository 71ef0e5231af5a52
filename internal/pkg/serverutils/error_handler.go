package serverutils

import (
	"errors"

	"ai-llm-demos-be/internal/pkg/logger"

	"github.com/gofiber/fiber/v2"
)

// GatewayError marks a failure of an upstream dependency (LLM or inventory service).
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string { return e.Err.Error() }
func (e *GatewayError) Unwrap() error { return e.Err }

func NewGatewayError(err error) error {
	if err == nil {
		return nil
	}
	return &GatewayError{Err: err}
}

// NewErrorHandler builds the fiber ErrorHandler shared by every route.
func NewErrorHandler(log logger.ILogger) fiber.ErrorHandler {
	return func(ctx *fiber.Ctx, err error) error {
		var validationErr *ValidationError
		if errors.As(err, &validationErr) {
			return ctx.Status(fiber.StatusBadRequest).JSON(validationErr.Fields)
		}

		var gatewayErr *GatewayError
		if errors.As(err, &gatewayErr) {
			log.Warn("HTTP", "Upstream failure", map[string]interface{}{
				"path":  ctx.Path(),
				"error": gatewayErr.Error(),
			})
			return ctx.Status(fiber.StatusBadGateway).JSON(ErrorResponse(fiber.StatusBadGateway, gatewayErr.Error()))
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Code, fiberErr.Message))
		}

		log.Error("HTTP", "Unhandled error", map[string]interface{}{
			"path":  ctx.Path(),
			"error": err.Error(),
		})
		// Status only: a 500 carries no body.
		ctx.Status(fiber.StatusInternalServerError)
		return nil
	}
}
