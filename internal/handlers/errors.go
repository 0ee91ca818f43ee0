package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"alfredoptarigan/skill-scout/internal/extractors"
	"alfredoptarigan/skill-scout/internal/repositories"
	"alfredoptarigan/skill-scout/internal/services"
)

// respondError maps service errors onto status codes. Each kind gets its own
// message so callers can tell a bad template from a storage outage. Unmapped
// errors are logged and answered with a generic message.
func respondError(c *fiber.Ctx, log *zap.Logger, err error) error {
	var formatErr *extractors.ExtractionFormatError
	var computeErr *services.SimilarityComputeError

	switch {
	case errors.As(err, &formatErr):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error": "upload unsuccessful: " + formatErr.Error(),
		})
	case errors.Is(err, services.ErrUnsupportedFile),
		errors.Is(err, services.ErrFileTooLarge),
		errors.Is(err, services.ErrEmptyFile),
		errors.Is(err, services.ErrInvalidRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, repositories.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	case errors.Is(err, context.DeadlineExceeded):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"error": "request timed out",
		})
	case errors.Is(err, context.Canceled):
		return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
			"error": "request cancelled",
		})
	case errors.As(err, &computeErr):
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "similarity model failed: " + computeErr.Error(),
		})
	default:
		log.Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
}
