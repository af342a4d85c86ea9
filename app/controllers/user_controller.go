package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
	"github.com/GenTestOfficial/GenTest-Website/app/repository"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
)

const (
	defaultHistoryLimit = 20
	defaultUsageDays    = 30
	maxUsageDays        = 366
)

// UserController serves the caller's entitlement, history and usage views.
type UserController struct {
	users   repository.UserRepository
	history repository.HistoryRepository
	usage   repository.UsageRepository
	catalog *entitlements.Catalog
	now     func() time.Time
}

func NewUserController(repos *repository.Repositories, catalog *entitlements.Catalog) *UserController {
	return &UserController{
		users:   repos.User,
		history: repos.History,
		usage:   repos.Usage,
		catalog: catalog,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// HandleUserData serves GET /api/user-data.
func (uc *UserController) HandleUserData(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}
	user, err := uc.users.GetByID(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"tier":             user.Tier,
		"token_usage":      user.TokenUsage,
		"token_limit":      user.TokenLimit,
		"remaining_tokens": user.RemainingTokens(),
		"subscription":     user.Subscription,
	})
}

// HandleHistory serves GET /api/history, newest first.
func (uc *UserController) HandleHistory(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}
	limit := c.QueryInt("limit", defaultHistoryLimit)
	if limit <= 0 {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "limit must be positive")
	}

	entries, err := uc.history.ListByUser(c.UserContext(), userID, limit)
	if err != nil {
		return respondError(c, err)
	}
	if entries == nil {
		entries = []models.TestHistory{}
	}
	return c.JSON(fiber.Map{"history": entries})
}

// HandleUsage serves GET /api/usage?days=, one row per day with usage.
func (uc *UserController) HandleUsage(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}
	days := c.QueryInt("days", defaultUsageDays)
	if days <= 0 || days > maxUsageDays {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "days must be between 1 and 366")
	}

	since := uc.now().AddDate(0, 0, -(days - 1)).Format(models.UsageDateLayout)
	rows, err := uc.usage.ListDaily(c.UserContext(), userID, since)
	if err != nil {
		return respondError(c, err)
	}

	out := make([]fiber.Map, 0, len(rows))
	var total int64
	for _, r := range rows {
		out = append(out, fiber.Map{"date": r.Date, "tokens_used": r.TokensUsed})
		total += r.TokensUsed
	}
	return c.JSON(fiber.Map{"since": since, "total": total, "days": out})
}

// HandleModels serves GET /api/models with the caller's entitlement per model.
func (uc *UserController) HandleModels(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}
	user, _, err := uc.users.EnsureUser(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}

	tier := entitlements.NormalizeTier(user.Tier)
	out := make([]fiber.Map, 0)
	for _, m := range uc.catalog.Models() {
		out = append(out, fiber.Map{
			"id":             m.ID,
			"provider":       m.Provider,
			"tier_required":  m.TierRequired,
			"max_tokens":     m.MaxTokens,
			"cost_per_token": m.CostPerToken,
			"entitled":       entitlements.Entitled(tier, m.TierRequired),
		})
	}
	return c.JSON(fiber.Map{"tier": tier, "models": out})
}
