package middleware

import (
	"context"
	"strings"

	"go-storefront/internal/model"
	"go-storefront/internal/service"

	"github.com/gofiber/fiber/v2"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"

	localsAccount = "account"
)

// Authenticator is the part of the auth service the middleware needs
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*model.Account, error)
}

// RequireAuth validates the access token (cookie first, then Bearer header)
// against the stored session and puts the account into Locals
func RequireAuth(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := accessToken(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		account, err := auth.Authenticate(c.UserContext(), token)
		if err != nil {
			status := fiber.StatusUnauthorized
			if service.KindOf(err) == service.KindPersistence {
				status = fiber.StatusInternalServerError
			}
			return c.Status(status).JSON(fiber.Map{"error": service.Message(err)})
		}

		c.Locals(localsAccount, account)
		return c.Next()
	}
}

// RequireCapability checks the authenticated account's role grants the capability
func RequireCapability(capability model.Capability) fiber.Handler {
	return func(c *fiber.Ctx) error {
		account, ok := Account(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Unauthorized"})
		}
		if !account.Role.Can(capability) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Forbidden: requires '" + string(capability) + "' capability",
			})
		}
		return c.Next()
	}
}

// RejectAuthenticated keeps signed-in clients away from register and login
func RejectAuthenticated(auth Authenticator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token, ok := accessToken(c); ok {
			if _, err := auth.Authenticate(c.UserContext(), token); err == nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Already logged in"})
			}
		}
		return c.Next()
	}
}

// Account returns the account set by RequireAuth
func Account(c *fiber.Ctx) (*model.Account, bool) {
	account, ok := c.Locals(localsAccount).(*model.Account)
	return account, ok && account != nil
}

// Actor is the authenticated account in the shape the services expect
func Actor(c *fiber.Ctx) service.Actor {
	account, ok := Account(c)
	if !ok {
		return service.Actor{}
	}
	return service.Actor{
		ID:    account.ID,
		Name:  account.Name,
		Email: account.Email,
		Role:  string(account.Role),
	}
}

func accessToken(c *fiber.Ctx) (string, bool) {
	if token := c.Cookies(AccessCookie); token != "" {
		return token, true
	}

	// Extract token from "Bearer <token>"
	parts := strings.Split(c.Get(fiber.HeaderAuthorization), " ")
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") && parts[1] != "" {
		return parts[1], true
	}
	return "", false
}
