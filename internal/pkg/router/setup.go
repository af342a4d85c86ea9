package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/GenTestOfficial/GenTest-Website/app/controllers"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/middleware"
)

// Router registers one group of routes on the app.
type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the constructed controllers and request guards.
type Dependencies struct {
	Generation *controllers.GenerationController
	User       *controllers.UserController
	Billing    *controllers.BillingController
	Upload     *controllers.UploadController
	Mail       *controllers.MailController
	Verifier   middleware.TokenVerifier
	Limit      LimitConfig
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	// Webhooks go first: they authenticate by signature, not by session.
	setup(app, NewHealthRouter(), NewWebhookRouter(deps.Billing), NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
