package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/streamnest-app/streamnest/app/controllers"
	"github.com/streamnest-app/streamnest/internal/pkg/middleware"
)

// ApiRouter installs the versioned JSON API: public catalog and content
// reads, the entitlement lookup, and the token-guarded operator routes.
type ApiRouter struct {
}

func NewApiRouter() ApiRouter {
	return ApiRouter{}
}

func (a ApiRouter) InstallRouter(app *fiber.App) {
	v1 := app.Group("/api/v1")

	// Public catalog and content
	v1.Get("/plans", controllers.HandleGetPlans)
	v1.Get("/banners", controllers.HandleGetBanners)
	v1.Get("/faqs", controllers.HandleGetFAQs)
	v1.Get("/users/:id/entitlement", controllers.HandleGetUserEntitlement)

	// Operator API
	admin := v1.Group("/admin", middleware.AdminTokenMiddleware())
	admin.Get("/stats", controllers.HandleAdminGetStats)

	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/users/:id", controllers.HandleAdminGetUser)
	admin.Delete("/users/:id/entitlement-cache", controllers.HandleAdminFlushEntitlementCache)
	admin.Delete("/entitlement-cache", controllers.HandleAdminFlushEntitlementCache)

	admin.Get("/plans", controllers.HandleAdminListPlans)
	admin.Post("/plans", controllers.HandleAdminCreatePlan)
	admin.Put("/plans/:id", controllers.HandleAdminUpdatePlan)
	admin.Delete("/plans/:id", controllers.HandleAdminDeletePlan)

	admin.Get("/banners", controllers.HandleAdminListBanners)
	admin.Post("/banners", controllers.HandleAdminCreateBanner)
	admin.Put("/banners/:id", controllers.HandleAdminUpdateBanner)
	admin.Delete("/banners/:id", controllers.HandleAdminDeleteBanner)

	admin.Get("/faqs", controllers.HandleAdminListFAQs)
	admin.Post("/faqs", controllers.HandleAdminCreateFAQ)
	admin.Put("/faqs/:id", controllers.HandleAdminUpdateFAQ)
	admin.Delete("/faqs/:id", controllers.HandleAdminDeleteFAQ)
}
