package handler

import (
	"go-storefront/internal/middleware"
	"go-storefront/internal/service"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	service service.OrderService
}

func NewOrderHandler(s service.OrderService) *OrderHandler {
	return &OrderHandler{service: s}
}

// GET /api/v1/orders
func (h *OrderHandler) GetOrders(c *fiber.Ctx) error {
	orders, err := h.service.ListOrders(c.UserContext(), middleware.Actor(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(orders)
}

// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}

	order, err := h.service.GetOrder(c.UserContext(), id, middleware.Actor(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(order)
}

// PlaceOrder buys a product directly, outside the cart
// POST /api/v1/orders/:product_id
func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "product_id")
	if !ok {
		return invalidID(c, "product")
	}
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	order, err := h.service.PlaceOrder(c.UserContext(), middleware.Actor(c), productID, req.Quantity, c.Get(HeaderIdempotencyKey))
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Order placed", "data": order})
}

// DELETE /api/v1/orders/:id
func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c, "order")
	}

	if err := h.service.CancelOrder(c.UserContext(), middleware.Actor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Order cancelled"})
}
