package billing

import (
	"errors"
	"time"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
)

var (
	ErrMissingSignature     = errors.New("missing webhook signature")
	ErrInvalidSignature     = errors.New("invalid webhook signature")
	ErrInvalidPayload       = errors.New("invalid webhook payload")
	ErrMissingUser          = errors.New("event does not reference a user")
	ErrNoActiveSubscription = errors.New("no active subscription")
	ErrUnsupportedPlan      = errors.New("unsupported plan")
	ErrGatewayDisabled      = errors.New("payment gateway not configured")
	ErrEventInProgress      = errors.New("webhook event is being processed by another delivery")
)

type EventType string

const (
	EventAccountCreated    EventType = "account-created"
	EventCheckoutCompleted EventType = "checkout-completed"
	EventSubscriptionEnded EventType = "subscription-ended"
	EventIgnored           EventType = "ignored"
)

// Event is a verified billing or identity event normalized across senders.
type Event struct {
	Provider        string
	ID              string
	Type            EventType
	RawType         string
	UserID          string
	Plan            string
	CustomerRef     string
	SubscriptionRef string
	Payload         []byte
}

// Outcome is how HandleEvent disposed of an event.
type Outcome string

const (
	OutcomeApplied   Outcome = "applied"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

// TierChange is written to the user row in a single statement.
type TierChange struct {
	Tier         entitlements.Tier
	TokenLimit   int64
	ResetUsage   bool
	Subscription *models.Subscription
}

// CancelResult describes a scheduled cancellation.
type CancelResult struct {
	User             *models.User
	CurrentPeriodEnd *time.Time
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}
