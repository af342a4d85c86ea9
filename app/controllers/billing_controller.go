package controllers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/billing"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/metrics"
)

const webhookTimeout = 15 * time.Second

type BillingController struct {
	svc                 *billing.Service
	stripeWebhookSecret string
	clerkWebhookSecret  string
	now                 func() time.Time
}

func NewBillingController(svc *billing.Service, stripeWebhookSecret, clerkWebhookSecret string) *BillingController {
	return &BillingController{
		svc:                 svc,
		stripeWebhookSecret: stripeWebhookSecret,
		clerkWebhookSecret:  clerkWebhookSecret,
		now:                 time.Now,
	}
}

// HandleStripeWebhook serves POST /api/webhooks/stripe.
func (bc *BillingController) HandleStripeWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	ev, err := billing.ParseStripeEvent(rawBody, c.Get("Stripe-Signature"), bc.stripeWebhookSecret)
	if err != nil {
		return bc.rejectWebhook(c, models.BillingProviderStripe, err)
	}
	return bc.handleEvent(c, ev)
}

// HandleClerkWebhook serves POST /api/webhooks/clerk.
func (bc *BillingController) HandleClerkWebhook(c *fiber.Ctx) error {
	rawBody := append([]byte(nil), c.BodyRaw()...)
	ev, err := billing.ParseClerkEvent(rawBody, billing.SvixHeaders{
		ID:        c.Get("svix-id"),
		Timestamp: c.Get("svix-timestamp"),
		Signature: c.Get("svix-signature"),
	}, bc.clerkWebhookSecret, bc.now())
	if err != nil {
		return bc.rejectWebhook(c, models.BillingProviderClerk, err)
	}
	return bc.handleEvent(c, ev)
}

// rejectWebhook answers deliveries that failed verification or parsing.
// Nothing has been written at this point.
func (bc *BillingController) rejectWebhook(c *fiber.Ctx, provider string, err error) error {
	if errors.Is(err, billing.ErrMissingSignature) || errors.Is(err, billing.ErrInvalidSignature) {
		metrics.WebhookEvents.WithLabelValues(provider, "invalid_signature").Inc()
		slog.Warn("rejected webhook signature", "provider", provider, "err", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid_signature"})
	}
	metrics.WebhookEvents.WithLabelValues(provider, "invalid_payload").Inc()
	slog.Warn("rejected webhook payload", "provider", provider, "err", err)
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
}

func (bc *BillingController) handleEvent(c *fiber.Ctx, ev *billing.Event) error {
	ctx, cancel := context.WithTimeout(context.Background(), webhookTimeout)
	defer cancel()

	outcome, err := bc.svc.HandleEvent(ctx, ev)
	if err != nil {
		slog.Error("webhook processing failed", "provider", ev.Provider, "event_id", ev.ID, "type", ev.RawType, "user_id", ev.UserID, "err", err)
		if errors.Is(err, billing.ErrEventInProgress) {
			metrics.WebhookEvents.WithLabelValues(ev.Provider, "in_progress").Inc()
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "event_in_progress"})
		}
		if errors.Is(err, billing.ErrMissingUser) || errors.Is(err, billing.ErrUnsupportedPlan) {
			metrics.WebhookEvents.WithLabelValues(ev.Provider, "invalid_payload").Inc()
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_payload"})
		}
		metrics.WebhookEvents.WithLabelValues(ev.Provider, "error").Inc()
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "webhook_processing_failed"})
	}

	metrics.WebhookEvents.WithLabelValues(ev.Provider, string(outcome)).Inc()
	switch outcome {
	case billing.OutcomeDuplicate:
		return c.JSON(fiber.Map{"ok": true, "duplicate": true})
	case billing.OutcomeIgnored:
		return c.JSON(fiber.Map{"ok": true, "ignored": true})
	default:
		slog.Info("webhook applied", "provider", ev.Provider, "event_id", ev.ID, "type", ev.RawType, "user_id", ev.UserID)
		return c.JSON(fiber.Map{"ok": true})
	}
}

type createCheckoutBody struct {
	Plan string `json:"plan"`
}

// HandleCreateCheckout serves POST /api/create-checkout.
func (bc *BillingController) HandleCreateCheckout(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}
	var body createCheckoutBody
	if err := c.BodyParser(&body); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "bad_request", "Invalid plan selected")
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), webhookTimeout)
	defer cancel()
	url, err := bc.svc.CreateCheckout(ctx, userID, body.Plan)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"url": url})
}

// HandleCancelSubscription serves POST /api/cancel-subscription.
func (bc *BillingController) HandleCancelSubscription(c *fiber.Ctx) error {
	userID, ok := requireUserID(c)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), webhookTimeout)
	defer cancel()
	res, err := bc.svc.CancelAtPeriodEnd(ctx, userID)
	if err != nil {
		return respondError(c, err)
	}

	var periodEnd interface{}
	if res.CurrentPeriodEnd != nil {
		periodEnd = res.CurrentPeriodEnd.UTC().Format(time.RFC3339)
	}
	return c.JSON(fiber.Map{
		"success":          true,
		"message":          "Subscription will be cancelled at the end of the billing period",
		"currentPeriodEnd": periodEnd,
	})
}
