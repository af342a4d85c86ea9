package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GenTestOfficial/GenTest-Website/app/controllers"
)

type WebhookRouter struct {
	billing *controllers.BillingController
}

func (h WebhookRouter) InstallRouter(app *fiber.App) {
	hooks := app.Group("/api/webhooks")
	hooks.Post("/stripe", h.billing.HandleStripeWebhook)
	hooks.Post("/clerk", h.billing.HandleClerkWebhook)
}

func NewWebhookRouter(billing *controllers.BillingController) *WebhookRouter {
	return &WebhookRouter{billing: billing}
}

type HealthRouter struct{}

func (HealthRouter) InstallRouter(app *fiber.App) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
}

func NewHealthRouter() *HealthRouter {
	return &HealthRouter{}
}
