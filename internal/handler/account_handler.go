package handler

import (
	"go-storefront/internal/middleware"
	"go-storefront/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AccountHandler struct {
	accountService service.AccountService
	auth           *AuthHandler
}

func NewAccountHandler(accountService service.AccountService, auth *AuthHandler) *AccountHandler {
	return &AccountHandler{accountService: accountService, auth: auth}
}

// GetProfile returns the signed-in account
// GET /api/v1/account
func (h *AccountHandler) GetProfile(c *fiber.Ctx) error {
	account, err := h.accountService.Profile(c.UserContext(), middleware.Actor(c).ID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(account.ToResponse())
}

// UpdateProfile changes name, email and/or password
// PUT /api/v1/account
func (h *AccountHandler) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	account, err := h.accountService.UpdateProfile(c.UserContext(), middleware.Actor(c).ID, &req)
	if err != nil {
		return fail(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Profile updated successfully",
		"data":    account.ToResponse(),
	})
}

// DeleteAccount removes the signed-in account after password confirmation
// DELETE /api/v1/account
func (h *AccountHandler) DeleteAccount(c *fiber.Ctx) error {
	var req service.DeleteAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	if err := h.accountService.DeleteAccount(c.UserContext(), middleware.Actor(c).ID, &req); err != nil {
		return fail(c, err)
	}

	if h.auth != nil {
		h.auth.clearCookies(c)
	}
	return c.JSON(fiber.Map{"message": "Account deleted successfully"})
}
