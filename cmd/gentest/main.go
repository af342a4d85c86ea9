package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/GenTestOfficial/GenTest-Website/app/controllers"
	"github.com/GenTestOfficial/GenTest-Website/app/repository"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/auth"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/billing"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/cache"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/config"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/database"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/env"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/generation"
	applog "github.com/GenTestOfficial/GenTest-Website/internal/pkg/logger"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/mail"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/metrics/counter"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/provider"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/router"
)

const shutdownTimeout = 30 * time.Second

func main() {
	env.SetupEnvFile()
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(applog.New(cfg.App.Env))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, flusher, err := NewApplication(ctx, cfg)
	if err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}

	flushDone := make(chan struct{})
	go func() {
		defer close(flushDone)
		flusher.Run(ctx, cfg.Counter.FlushInterval)
	}()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			slog.Error("shutdown failed", "err", err)
		}
	}()

	addr := fmt.Sprintf("%s:%s", cfg.App.Host, cfg.App.Port)
	slog.Info("listening", "addr", addr, "env", cfg.App.Env)
	if err := app.Listen(addr); err != nil {
		slog.Error("server stopped", "err", err)
		stop()
	}
	<-flushDone
}

// NewApplication wires storage, providers, billing and routes. The returned
// counter must be run to move daily usage from Redis into the database.
func NewApplication(ctx context.Context, cfg *config.Config) (*fiber.App, *counter.Counter, error) {
	db, err := database.SetupDatabase(cfg.DB)
	if err != nil {
		return nil, nil, err
	}
	repository.InitializeFactory(db)
	repos := repository.GetGlobalRepositories()

	rdb := cache.SetupCache(cfg.Cache)
	if !cache.Available() {
		rdb = nil
	}
	daily := counter.New(rdb, repos.Usage)

	registry := provider.NewRegistry()
	var families []entitlements.ProviderFamily
	if cfg.OpenAI.Enabled() {
		registry.Register("gpt", string(entitlements.ProviderOpenAI), provider.NewOpenAI(provider.OpenAIConfig{
			APIKey:      cfg.OpenAI.APIKey,
			BaseURL:     cfg.OpenAI.BaseURL,
			Timeout:     cfg.OpenAI.Timeout,
			Temperature: 0.7,
		}))
		families = append(families, entitlements.ProviderOpenAI)
	}
	if cfg.Anthropic.Enabled() {
		registry.Register("claude", string(entitlements.ProviderAnthropic), provider.NewAnthropic(provider.AnthropicConfig{
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: cfg.Anthropic.BaseURL,
			Timeout: cfg.Anthropic.Timeout,
		}))
		families = append(families, entitlements.ProviderAnthropic)
	}
	catalog := entitlements.DefaultCatalog().WithFamilies(families...)

	pipeline, err := generation.New(generation.Options{
		Catalog:  catalog,
		Provider: registry,
		Users:    repos.User,
		History:  repos.History,
		Daily:    daily,
	})
	if err != nil {
		return nil, nil, err
	}

	var gateway billing.PaymentGateway
	if cfg.Stripe.SecretKey != "" {
		gateway = billing.NewStripeGateway(billing.StripeGatewayConfig{
			SecretKey:  cfg.Stripe.SecretKey,
			ProPriceID: cfg.Stripe.ProPriceID,
			AppURL:     cfg.App.URL,
		})
	} else {
		slog.Warn("STRIPE_SECRET_KEY not set, checkout and cancellation are disabled")
	}
	billingSvc := billing.NewServiceFromDB(db, gateway)

	verifier, err := auth.NewVerifier(ctx, auth.Options{
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
		JWKSURL:  cfg.Auth.JWKSURL,
	})
	if err != nil {
		return nil, nil, err
	}

	if !cfg.Mail.Enabled() {
		slog.Warn("SMTP_HOST not set, send-email is disabled")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 25 << 20,
	})

	// recovery and logging
	app.Use(recover.New(), logger.New())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	if cfg.App.MonitorPass != "" {
		app.Get("/monitor", basicauth.New(basicauth.Config{
			Users: map[string]string{cfg.App.MonitorUser: cfg.App.MonitorPass},
		}), monitor.New())
	}

	// SWAGGER / OPENAPI
	app.Use(swagger.New(swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "./public/docs/v1/openapi.yml",
		Path:     "v1",
	}))

	router.InstallRouter(app, router.Dependencies{
		Generation: controllers.NewGenerationController(pipeline),
		User:       controllers.NewUserController(repos, catalog),
		Billing:    controllers.NewBillingController(billingSvc, cfg.Stripe.WebhookSecret, cfg.Clerk.WebhookSecret),
		Upload:     controllers.NewUploadController(repos.User),
		Mail:       controllers.NewMailController(mail.NewSMTPMailer(cfg.Mail)),
		Verifier:   verifier,
		Limit: router.LimitConfig{
			Max:        cfg.App.RateLimitMax,
			Expiration: cfg.App.RateLimitEvery,
			Storage:    cache.NewLimiterStorage(cfg.Cache),
		},
	})

	return app, daily, nil
}
