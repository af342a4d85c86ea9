package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
)

const (
	stripeCheckoutCompleted   = "checkout.session.completed"
	stripeSubscriptionDeleted = "customer.subscription.deleted"
)

// ParseStripeEvent verifies the Stripe-Signature header and normalizes the
// event. Verification happens before the payload is interpreted.
func ParseStripeEvent(payload []byte, signatureHeader, secret string) (*Event, error) {
	if strings.TrimSpace(signatureHeader) == "" || strings.TrimSpace(secret) == "" {
		return nil, ErrMissingSignature
	}

	se, err := webhook.ConstructEventWithOptions(payload, signatureHeader, secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		if errors.Is(err, webhook.ErrNotSigned) || errors.Is(err, webhook.ErrNoValidSignature) ||
			errors.Is(err, webhook.ErrInvalidHeader) || errors.Is(err, webhook.ErrTooOld) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ev := &Event{
		Provider: models.BillingProviderStripe,
		ID:       se.ID,
		Type:     EventIgnored,
		RawType:  string(se.Type),
		Payload:  payload,
	}

	switch string(se.Type) {
	case stripeCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(se.Data.Raw, &sess); err != nil {
			return nil, fmt.Errorf("%w: checkout session: %v", ErrInvalidPayload, err)
		}
		ev.Type = EventCheckoutCompleted
		ev.UserID = sess.Metadata["userId"]
		if ev.UserID == "" {
			ev.UserID = sess.ClientReferenceID
		}
		ev.Plan = sess.Metadata["plan"]
		if sess.Customer != nil {
			ev.CustomerRef = sess.Customer.ID
		}
		if sess.Subscription != nil {
			ev.SubscriptionRef = sess.Subscription.ID
		}
	case stripeSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(se.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("%w: subscription: %v", ErrInvalidPayload, err)
		}
		ev.Type = EventSubscriptionEnded
		ev.UserID = sub.Metadata["userId"]
		ev.SubscriptionRef = sub.ID
		if sub.Customer != nil {
			ev.CustomerRef = sub.Customer.ID
		}
	}
	return ev, nil
}

// StripeGatewayConfig configures outbound Stripe calls. Backends is only set
// in tests.
type StripeGatewayConfig struct {
	SecretKey  string
	ProPriceID string
	AppURL     string
	Backends   *stripe.Backends
}

// StripeGateway implements PaymentGateway with a per-instance Stripe client.
type StripeGateway struct {
	api        *client.API
	proPriceID string
	appURL     string
}

func NewStripeGateway(cfg StripeGatewayConfig) *StripeGateway {
	api := &client.API{}
	api.Init(cfg.SecretKey, cfg.Backends)
	return &StripeGateway{
		api:        api,
		proPriceID: cfg.ProPriceID,
		appURL:     strings.TrimRight(cfg.AppURL, "/"),
	}
}

func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, userID, plan string) (string, error) {
	if g.proPriceID == "" {
		return "", fmt.Errorf("%w: missing price id", ErrGatewayDisabled)
	}
	meta := map[string]string{"userId": userID, "plan": plan}
	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(g.proPriceID),
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(userID),
		SuccessURL:        stripe.String(g.appURL + "/dashboard?success=true"),
		CancelURL:         stripe.String(g.appURL + "/pricing?canceled=true"),
		Metadata:          meta,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: meta,
		},
	}
	params.Context = ctx

	sess, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return "", err
	}
	return sess.URL, nil
}

func (g *StripeGateway) CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*time.Time, error) {
	params := &stripe.SubscriptionParams{
		CancelAtPeriodEnd: stripe.Bool(true),
	}
	params.Context = ctx

	sub, err := g.api.Subscriptions.Update(subscriptionID, params)
	if err != nil {
		return nil, err
	}
	if sub.CurrentPeriodEnd == 0 {
		return nil, nil
	}
	end := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
	return &end, nil
}
