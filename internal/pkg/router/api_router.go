package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/middleware"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/usercontext"
)

// LimitConfig bounds authenticated API calls per user. Storage nil keeps the
// windows in process memory.
type LimitConfig struct {
	Max        int
	Expiration time.Duration
	Storage    fiber.Storage
}

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", middleware.RequireAPIAuth(h.deps.Verifier), newLimiter(h.deps.Limit))

	api.Post("/generate-tests", h.deps.Generation.HandleGenerateTests)
	api.Post("/upload-files", h.deps.Upload.HandleUploadFiles)
	api.Post("/send-email", h.deps.Mail.HandleSendEmail)

	api.Get("/user-data", h.deps.User.HandleUserData)
	api.Get("/history", h.deps.User.HandleHistory)
	api.Get("/usage", h.deps.User.HandleUsage)
	api.Get("/models", h.deps.User.HandleModels)

	api.Post("/create-checkout", h.deps.Billing.HandleCreateCheckout)
	api.Post("/cancel-subscription", h.deps.Billing.HandleCancelSubscription)
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}

func newLimiter(cfg LimitConfig) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = 30
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Minute
	}
	return limiter.New(limiter.Config{
		Max:        cfg.Max,
		Expiration: cfg.Expiration,
		Storage:    cfg.Storage,
		KeyGenerator: func(c *fiber.Ctx) string {
			if id := usercontext.GetUserID(c); id != "" {
				return "user:" + id
			}
			return "ip:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":   "rate_limited",
				"message": "Too many requests, slow down",
			})
		},
	})
}
