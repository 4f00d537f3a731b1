package handler

import (
	"go-storefront/internal/middleware"
	"go-storefront/internal/service"

	"github.com/gofiber/fiber/v2"
)

type CartHandler struct {
	cartService  service.CartService
	orderService service.OrderService
}

func NewCartHandler(cartService service.CartService, orderService service.OrderService) *CartHandler {
	return &CartHandler{cartService: cartService, orderService: orderService}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(c *fiber.Ctx) error {
	cart, err := h.cartService.List(c.UserContext(), middleware.Actor(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(cart)
}

// POST /api/v1/cart/:product_id
func (h *CartHandler) AddToCart(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "product_id")
	if !ok {
		return invalidID(c, "product")
	}
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	line, err := h.cartService.Add(c.UserContext(), middleware.Actor(c).ID, productID, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.Status(201).JSON(fiber.Map{"message": "Product added to cart", "data": line})
}

// PUT /api/v1/cart/:product_id
func (h *CartHandler) UpdateCart(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "product_id")
	if !ok {
		return invalidID(c, "product")
	}
	var req quantityRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	line, err := h.cartService.Update(c.UserContext(), middleware.Actor(c).ID, productID, req.Quantity)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Cart updated", "data": line})
}

// DELETE /api/v1/cart/:product_id
func (h *CartHandler) RemoveFromCart(c *fiber.Ctx) error {
	productID, ok := paramUUID(c, "product_id")
	if !ok {
		return invalidID(c, "product")
	}

	if err := h.cartService.Remove(c.UserContext(), middleware.Actor(c).ID, productID); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product removed from cart"})
}

// Checkout turns every available cart line into an order
// POST /api/v1/cart/checkout
func (h *CartHandler) Checkout(c *fiber.Ctx) error {
	result, err := h.orderService.CheckoutCart(c.UserContext(), middleware.Actor(c), c.Get(HeaderIdempotencyKey))
	if err != nil {
		return fail(c, err)
	}

	status := fiber.StatusCreated
	if len(result.Orders) == 0 {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(result)
}
