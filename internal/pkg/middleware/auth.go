package middleware

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/auth"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/usercontext"
)

// TokenVerifier is implemented by auth.Verifier.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAPIAuth verifies the bearer session token and stores the caller on
// the request. Failures return JSON 401 before the handler runs.
func RequireAPIAuth(verifier TokenVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if verifier == nil {
			return unauthorized(c, "auth verifier not configured")
		}
		token, ok := auth.ExtractBearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			return unauthorized(c, "missing or malformed authorization header")
		}
		claims, err := verifier.Verify(token)
		if err != nil {
			slog.Debug("auth failure", "path", c.Path(), "err", err)
			return unauthorized(c, "invalid token")
		}

		usercontext.Set(c, usercontext.UserContext{
			UserID:     claims.Subject,
			SessionID:  claims.SessionID,
			IsLoggedIn: true,
		})
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error":   "unauthorized",
		"message": message,
	})
}
