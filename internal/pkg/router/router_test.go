package router

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GenTestOfficial/GenTest-Website/app/controllers"
	"github.com/GenTestOfficial/GenTest-Website/app/repository"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/auth"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/billing"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/database"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
)

type tokenVerifier map[string]string

func (v tokenVerifier) Verify(token string) (*auth.Claims, error) {
	sub, ok := v[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &auth.Claims{Subject: sub}, nil
}

func newTestApp(t *testing.T, limit LimitConfig) *fiber.App {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	repos := repository.NewRepositories(db)

	app := fiber.New()
	InstallRouter(app, Dependencies{
		User:     controllers.NewUserController(repos, entitlements.DefaultCatalog()),
		Billing:  controllers.NewBillingController(billing.NewServiceFromDB(db, nil), "whsec_s", "whsec_c2VjcmV0"),
		Verifier: tokenVerifier{"good": "user_1"},
		Limit:    limit,
	})
	return app
}

func status(t *testing.T, app *fiber.App, method, path, token string) int {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, LimitConfig{})
	assert.Equal(t, fiber.StatusOK, status(t, app, "GET", "/health", ""))
}

func TestAPIRequiresBearerToken(t *testing.T) {
	app := newTestApp(t, LimitConfig{})
	for _, path := range []string{"/api/user-data", "/api/models", "/api/history", "/api/usage"} {
		assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "GET", path, ""), path)
		assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "GET", path, "bad"), path)
	}
	assert.Equal(t, fiber.StatusOK, status(t, app, "GET", "/api/models", "good"))
}

func TestWebhooksBypassSessionAuth(t *testing.T) {
	app := newTestApp(t, LimitConfig{})
	// No bearer token: the signature check answers, not the session guard.
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "POST", "/api/webhooks/stripe", ""))
	assert.Equal(t, fiber.StatusUnauthorized, status(t, app, "POST", "/api/webhooks/clerk", ""))

	req := httptest.NewRequest("POST", "/api/webhooks/stripe", strings.NewReader("{}"))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "invalid_signature")
}

func TestLimiterPerUser(t *testing.T) {
	app := newTestApp(t, LimitConfig{Max: 2})
	assert.Equal(t, fiber.StatusOK, status(t, app, "GET", "/api/models", "good"))
	assert.Equal(t, fiber.StatusOK, status(t, app, "GET", "/api/models", "good"))
	assert.Equal(t, fiber.StatusTooManyRequests, status(t, app, "GET", "/api/models", "good"))
}
