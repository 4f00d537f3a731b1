package handler

import (
	"time"

	"go-storefront/internal/middleware"
	"go-storefront/internal/service"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService  service.AuthService
	cookieSecure bool
}

func NewAuthHandler(authService service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure}
}

// Register creates a user account
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req service.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	account, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Account created successfully",
		"data":    account.ToResponse(),
	})
}

// RegisterAdmin creates an admin account when the signup key matches
// POST /api/v1/auth/register-admin
func (h *AuthHandler) RegisterAdmin(c *fiber.Ctx) error {
	var req service.RegisterAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	account, err := h.authService.RegisterAdmin(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}

	return c.Status(201).JSON(fiber.Map{
		"message": "Admin account created successfully",
		"data":    account.ToResponse(),
	})
}

// Login handles authentication and sets the session cookies
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req service.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{"error": "Invalid JSON"})
	}

	response, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return fail(c, err)
	}

	h.setCookie(c, middleware.AccessCookie, response.Tokens.AccessToken, response.Tokens.AccessExpiresAt)
	h.setCookie(c, middleware.RefreshCookie, response.Tokens.RefreshToken, response.Tokens.RefreshExpiresAt)
	return c.JSON(response)
}

// Refresh issues a new access token from the refresh cookie (or body)
// POST /api/v1/auth/refresh
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	token := c.Cookies(middleware.RefreshCookie)
	if token == "" {
		var req struct {
			RefreshToken string `json:"refresh_token"`
		}
		_ = c.BodyParser(&req)
		token = req.RefreshToken
	}
	if token == "" {
		return c.Status(403).JSON(fiber.Map{"error": "Refresh token missing"})
	}

	pair, err := h.authService.Refresh(c.UserContext(), token)
	if err != nil {
		return fail(c, err)
	}

	h.setCookie(c, middleware.AccessCookie, pair.AccessToken, pair.AccessExpiresAt)
	return c.JSON(pair)
}

// Logout ends every session of the account and clears the cookies
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	actor := middleware.Actor(c)
	if err := h.authService.Logout(c.UserContext(), actor.ID); err != nil {
		return fail(c, err)
	}

	h.clearCookies(c)
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

func (h *AuthHandler) setCookie(c *fiber.Ctx, name, value string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.cookieSecure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookies(c *fiber.Ctx) {
	for _, name := range []string{middleware.AccessCookie, middleware.RefreshCookie} {
		c.Cookie(&fiber.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
			HTTPOnly: true,
			Secure:   h.cookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
}
