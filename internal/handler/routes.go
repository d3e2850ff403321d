package handler

import (
	"go-pos-inventory/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

type Handlers struct {
	Inventory *InventoryHandler
	Dashboard *DashboardHandler
	Form      *FormHandler
}

// RegisterRoutes mounts the authenticated API under router.
func RegisterRoutes(router fiber.Router, h Handlers) {
	protected := router.Group("", middleware.RequireAuth())

	protected.Get("/dashboard/stats", h.Dashboard.GetDashboardStats)

	protected.Get("/suppliers", h.Inventory.GetSuppliers)
	protected.Get("/products", h.Inventory.GetProducts)
	protected.Get("/products/:id", h.Inventory.GetProduct)

	forms := protected.Group("/product-forms", middleware.RequireAnyPrivilege("product:create", "product:update"))
	forms.Post("/", h.Form.Open)
	forms.Get("/:id", h.Form.Get)
	forms.Post("/:id/submit", h.Form.Submit)
	forms.Post("/:id/unlock", h.Form.Unlock)
	forms.Post("/:id/key", h.Form.SubmitKey)
	forms.Delete("/:id/notice", h.Form.DismissNotice)
	forms.Delete("/:id", h.Form.Close)
}
