package handler

import (
	"go-storefront/internal/middleware"
	"go-storefront/internal/model"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Auth      *AuthHandler
	Account   *AccountHandler
	Product   *ProductHandler
	Cart      *CartHandler
	Order     *OrderHandler
	Dashboard *DashboardHandler
}

// Register mounts the REST API under /api/v1
func Register(app *fiber.App, h Handlers, auth middleware.Authenticator) {
	api := app.Group("/api/v1")
	requireAuth := middleware.RequireAuth(auth)
	guest := middleware.RejectAuthenticated(auth)

	// ============ PUBLIC ROUTES ============
	authGroup := api.Group("/auth")
	authGroup.Post("/register", guest, h.Auth.Register)
	authGroup.Post("/register-admin", guest, h.Auth.RegisterAdmin)
	authGroup.Post("/login", guest, h.Auth.Login)
	authGroup.Post("/refresh", h.Auth.Refresh)
	authGroup.Post("/logout", requireAuth, h.Auth.Logout)

	api.Get("/products", h.Product.GetProducts)
	api.Get("/products/:id", h.Product.GetProduct)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", requireAuth)

	profile := middleware.RequireCapability(model.CapAccountProfile)
	protected.Get("/account", profile, h.Account.GetProfile)
	protected.Put("/account", profile, h.Account.UpdateProfile)
	protected.Delete("/account", profile, h.Account.DeleteAccount)

	// Catalog management (admin)
	catalog := middleware.RequireCapability(model.CapCatalogManage)
	protected.Post("/products", catalog, h.Product.CreateProduct)
	protected.Put("/products/:id", catalog, h.Product.UpdateProduct)
	protected.Delete("/products/:id", catalog, h.Product.DeleteProduct)
	protected.Get("/products/:id/movements", catalog, h.Product.GetMovements)

	// Cart (user); checkout goes first so it is not read as a product id
	cart := middleware.RequireCapability(model.CapCartManage)
	protected.Post("/cart/checkout", cart, middleware.RequireCapability(model.CapOrderPlace), h.Cart.Checkout)
	protected.Get("/cart", cart, h.Cart.GetCart)
	protected.Post("/cart/:product_id", cart, h.Cart.AddToCart)
	protected.Put("/cart/:product_id", cart, h.Cart.UpdateCart)
	protected.Delete("/cart/:product_id", cart, h.Cart.RemoveFromCart)

	// Orders (user)
	orders := middleware.RequireCapability(model.CapOrderPlace)
	protected.Get("/orders", orders, h.Order.GetOrders)
	protected.Get("/orders/:id", orders, h.Order.GetOrder)
	protected.Post("/orders/:product_id", orders, h.Order.PlaceOrder)
	protected.Delete("/orders/:id", orders, h.Order.CancelOrder)

	// Dashboard (admin)
	dashboard := middleware.RequireCapability(model.CapDashboardView)
	protected.Get("/dashboard/stats", dashboard, h.Dashboard.GetDashboardStats)
	protected.Get("/dashboard/stock-movement", dashboard, h.Dashboard.GetStockMovement)
}
