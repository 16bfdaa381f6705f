package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/streamnest-app/streamnest/app/controllers"
)

// HttpRouter installs the unauthenticated surface: the provider webhook
// endpoint and the health check.
type HttpRouter struct {
}

func NewHttpRouter() HttpRouter {
	return HttpRouter{}
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// The provider authenticates via shared secret or body signature inside
	// the controller, not via middleware, so that a misconfigured secret
	// still produces a deliberate 401 instead of a routing gap.
	app.Post("/webhooks/subscription-events", controllers.HandleSubscriptionWebhook)
}
