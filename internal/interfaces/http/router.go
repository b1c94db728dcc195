package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/steadymonitor/pos-api/internal/application/auth"
	"github.com/steadymonitor/pos-api/internal/infrastructure/metrics"
	"github.com/steadymonitor/pos-api/pkg/logger"
)

// authUseCase todo lo que las rutas usan de *auth.AuthUseCase.
type authUseCase interface {
	authService
	sessionResolver
	roleChanger
}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AuthUC     authUseCase
	CheckoutUC checkoutService
	CatalogUC  catalogService
	SaleUC     saleService
	PaymentUC  paymentService
	ProductUC  productService
	CustomerUC customerService

	Cookie   SessionCookie
	Metrics  *metrics.Metrics
	Logger   *logger.Logger
	PagesDir string
	// LoginLimiter middleware opcional delante de POST /api/auth/login.
	LoginLimiter fiber.Handler
}

// Router registra las rutas de la API y de las páginas.
func Router(app *fiber.App, deps RouterDeps) {
	sessions := NewSessionMiddleware(deps.AuthUC, deps.Cookie, deps.Logger)
	api := app.Group("/api")

	// Auth
	authGroup := api.Group("/auth")
	authHandler := NewAuthHandler(deps.AuthUC, deps.Cookie, deps.Metrics, deps.Logger)
	if deps.LoginLimiter != nil {
		authGroup.Post("/login", deps.LoginLimiter, authHandler.Login)
	} else {
		authGroup.Post("/login", authHandler.Login)
	}
	authGroup.Post("/logout", authHandler.Logout)
	authGroup.Get("/check", sessions.Resolve(), authHandler.Check)
	authGroup.Get("/permissions", sessions.RequireAPI(), authHandler.Permissions)

	// Punto de venta. El departamento del cobro viene en el body y lo autoriza el caso de uso.
	posGroup := api.Group("/pos", sessions.RequireAPI(), RequirePermission(auth.PermPOS))
	posHandler := NewPOSHandler(deps.CheckoutUC, deps.CatalogUC, deps.SaleUC, deps.PaymentUC, deps.Metrics, deps.Logger)
	posGroup.Post("/checkout", posHandler.Checkout)
	posGroup.Get("/products/:department", RequireDepartmentPermission(auth.PermPOS, DepartmentFromParam("department")), posHandler.ListProducts)
	posGroup.Get("/sales/:id", posHandler.GetSale)
	posGroup.Post("/sales/:id/void", RequirePermission(auth.PermRefunds), posHandler.VoidSale)
	posGroup.Post("/payments", posHandler.RecordPayment)

	// Inventario
	invGroup := api.Group("/inventory", sessions.RequireAPI(), RequirePermission(auth.PermInventory))
	productHandler := NewProductHandler(deps.ProductUC, deps.Logger)
	invGroup.Get("/products", RequireDepartmentPermission(auth.PermInventory, DepartmentFromQuery("department")), productHandler.List)
	invGroup.Post("/products", productHandler.Create)
	invGroup.Get("/products/:id", productHandler.GetByID)
	invGroup.Put("/products/:id", productHandler.Update)
	invGroup.Post("/products/:id/stock", productHandler.AdjustStock)
	invGroup.Get("/reorder", RequireDepartmentPermission(auth.PermInventory, DepartmentFromQuery("department")), productHandler.Reorder)

	// Clientes
	customers := api.Group("/customers", sessions.RequireAPI(), RequirePermission(auth.PermCustomers))
	customerHandler := NewCustomerHandler(deps.CustomerUC, deps.Logger)
	customers.Post("/", customerHandler.Create)
	customers.Get("/", customerHandler.List)
	customers.Get("/:id", customerHandler.GetByID)

	// Administración
	admin := api.Group("/admin", sessions.RequireAPI(), RequirePermission(auth.PermAdmin))
	adminHandler := NewAdminHandler(deps.AuthUC, deps.Logger)
	admin.Put("/users/:id/role", adminHandler.ChangeRole)

	// Páginas
	if deps.PagesDir != "" {
		pages := NewPageHandler(deps.PagesDir)
		app.Get("/", func(c *fiber.Ctx) error { return c.Redirect(auth.PathLogin, fiber.StatusFound) })
		app.Get(auth.PathLogin, sessions.Resolve(), pages.Login)
		requirePage := sessions.RequirePage(auth.PathLogin)
		app.Get(auth.PathAdmin, requirePage, pages.Landing(auth.PathAdmin, "admin.html"))
		app.Get(auth.PathDepartment, requirePage, pages.Landing(auth.PathDepartment, "department.html"))
		app.Get(auth.PathPOS, requirePage, pages.Landing(auth.PathPOS, "pos.html"))
	}
}
