package handler

import (
	"strconv"
	"strings"

	"go-storefront/internal/middleware"
	"go-storefront/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ProductHandler struct {
	service service.CatalogService
}

func NewProductHandler(s service.CatalogService) *ProductHandler {
	return &ProductHandler{service: s}
}

// GetProducts lists the catalog
// GET /api/v1/products
func (h *ProductHandler) GetProducts(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(c.UserContext())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(products)
}

// GET /api/v1/products/:id
func (h *ProductHandler) GetProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	product, err := h.service.GetProduct(c.UserContext(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(product)
}

// CreateProduct accepts JSON or multipart/form-data (with an optional "image" file)
// POST /api/v1/products
func (h *ProductHandler) CreateProduct(c *fiber.Ctx) error {
	var req service.CreateProductRequest
	if isMultipart(c) {
		req.Name = c.FormValue("name")
		req.Description = c.FormValue("description")
		if v := c.FormValue("price"); v != "" {
			price, err := decimal.NewFromString(v)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "price must be a number"})
			}
			req.Price = price
		}
		if v := c.FormValue("stock"); v != "" {
			stock, err := strconv.Atoi(v)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "stock must be a whole number"})
			}
			req.Stock = stock
		}
		if file, err := c.FormFile("image"); err == nil {
			req.Image = file
		}
	} else if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.CreateProduct(c.UserContext(), middleware.Actor(c), &req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{"message": "Product created", "data": product})
}

// PUT /api/v1/products/:id
func (h *ProductHandler) UpdateProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	var req service.UpdateProductRequest
	if isMultipart(c) {
		if v := c.FormValue("name"); v != "" {
			req.Name = &v
		}
		if v := c.FormValue("description"); v != "" {
			req.Description = &v
		}
		if v := c.FormValue("price"); v != "" {
			price, err := decimal.NewFromString(v)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "price must be a number"})
			}
			req.Price = &price
		}
		if v := c.FormValue("stock"); v != "" {
			stock, err := strconv.Atoi(v)
			if err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "stock must be a whole number"})
			}
			req.Stock = &stock
		}
		if file, err := c.FormFile("image"); err == nil {
			req.Image = file
		}
	} else if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	product, err := h.service.UpdateProduct(c.UserContext(), middleware.Actor(c), id, &req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{"message": "Product updated", "data": product})
}

// DELETE /api/v1/products/:id
func (h *ProductHandler) DeleteProduct(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	if err := h.service.DeleteProduct(c.UserContext(), middleware.Actor(c), id); err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{"message": "Product deleted"})
}

// GetMovements returns the stock journal of one of the admin's products
// GET /api/v1/products/:id/movements
func (h *ProductHandler) GetMovements(c *fiber.Ctx) error {
	id, ok := paramUUID(c, "id")
	if !ok {
		return invalidID(c, "product")
	}

	movements, err := h.service.ListMovements(c.UserContext(), middleware.Actor(c), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(movements)
}

func isMultipart(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm)
}
