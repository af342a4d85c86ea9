package controllers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/billing"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/generation"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/usercontext"
)

func jsonError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": code, "message": message})
}

// requireUserID returns the authenticated caller or writes a 401.
func requireUserID(c *fiber.Ctx) (string, bool) {
	userCtx := usercontext.GetUserContext(c)
	if !userCtx.IsLoggedIn || userCtx.UserID == "" {
		_ = jsonError(c, fiber.StatusUnauthorized, "unauthorized", "Missing or invalid authentication")
		return "", false
	}
	return userCtx.UserID, true
}

// respondError maps domain errors onto the API's JSON error shape.
func respondError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, generation.ErrInvalidRequest):
		return jsonError(c, fiber.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, entitlements.ErrQuotaExceeded):
		return jsonError(c, fiber.StatusTooManyRequests, "quota_exceeded", "Token limit exceeded")
	case errors.Is(err, entitlements.ErrModelNotEntitled):
		return jsonError(c, fiber.StatusForbidden, "model_not_entitled", "This model requires a Pro subscription")
	case errors.Is(err, generation.ErrProvider):
		return jsonError(c, fiber.StatusBadGateway, "provider_error", "Failed to generate tests with AI model")
	case errors.Is(err, billing.ErrUnsupportedPlan):
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid plan selected")
	case errors.Is(err, billing.ErrNoActiveSubscription):
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "No active subscription found")
	case errors.Is(err, billing.ErrGatewayDisabled):
		return jsonError(c, fiber.StatusServiceUnavailable, "service_unavailable", "Payments are not configured")
	case errors.Is(err, gorm.ErrRecordNotFound):
		return jsonError(c, fiber.StatusNotFound, "not_found", "User not found")
	default:
		slog.Error("request failed", "path", c.Path(), "user_id", usercontext.GetUserID(c), "err", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "Internal server error")
	}
}
