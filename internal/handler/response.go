package handler

import (
	"go-storefront/internal/service"
	"go-storefront/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HeaderIdempotencyKey lets clients retry order placement and checkout safely
const HeaderIdempotencyKey = "Idempotency-Key"

func statusOf(err error) int {
	switch service.KindOf(err) {
	case service.KindNotFound:
		return fiber.StatusNotFound
	case service.KindConflict:
		return fiber.StatusConflict
	case service.KindInvalidInput, service.KindStockUnavailable:
		return fiber.StatusBadRequest
	case service.KindUnauthorized:
		return fiber.StatusUnauthorized
	case service.KindForbidden:
		return fiber.StatusForbidden
	default:
		return fiber.StatusInternalServerError
	}
}

// fail writes a service error as {"error": "..."}; persistence details only go to the log
func fail(c *fiber.Ctx, err error) error {
	status := statusOf(err)
	if status == fiber.StatusInternalServerError {
		logger.FromContext(c.UserContext()).Error("request failed", zap.Error(err))
	}
	return c.Status(status).JSON(fiber.Map{"error": service.Message(err)})
}

// Helper untuk parse UUID dari path param
func paramUUID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func invalidID(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid " + what + " ID"})
}

type quantityRequest struct {
	Quantity int `json:"quantity" form:"quantity"`
}
