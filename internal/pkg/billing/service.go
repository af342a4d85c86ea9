package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
)

// A claim older than this is treated as abandoned by a crashed delivery.
const webhookClaimTTL = 5 * time.Minute

// PaymentGateway is the outbound side of the payment processor.
type PaymentGateway interface {
	CreateCheckoutSession(ctx context.Context, userID, plan string) (string, error)
	CancelAtPeriodEnd(ctx context.Context, subscriptionID string) (*time.Time, error)
}

// Service is the subscription state machine. It is the only writer of tier,
// token limit and subscription fields.
type Service struct {
	repo    Repository
	gateway PaymentGateway
	now     func() time.Time
}

// NewService creates a billing service from an injected repository. gateway
// may be nil when outbound payment calls are not configured.
func NewService(repo Repository, gateway PaymentGateway) *Service {
	return &Service{repo: repo, gateway: gateway, now: func() time.Time { return time.Now().UTC() }}
}

// NewServiceFromDB creates a billing service from a GORM DB handle.
func NewServiceFromDB(db *gorm.DB, gateway PaymentGateway) *Service {
	return NewService(NewRepository(db), gateway)
}

// HandleEvent records a verified event and applies its transition once.
// Deliveries of an event that was already processed successfully are
// acknowledged as duplicates without touching the user. A delivery that
// arrives while another one holds the event gets ErrEventInProgress.
func (s *Service) HandleEvent(ctx context.Context, ev *Event) (Outcome, error) {
	created, stored, err := s.RecordWebhookEvent(ctx, WebhookEventInput{
		Provider:        ev.Provider,
		ProviderEventID: ev.ID,
		EventType:       ev.RawType,
		PayloadJSON:     string(ev.Payload),
		SignatureValid:  true,
	})
	if err != nil {
		return "", fmt.Errorf("record webhook event: %w", err)
	}
	if !created && stored.Processed() && stored.ProcessingError == "" {
		return OutcomeDuplicate, nil
	}

	now := s.now()
	claimed, err := s.repo.ClaimWebhookEvent(ctx, stored.ID, now, now.Add(-webhookClaimTTL))
	if err != nil {
		return "", fmt.Errorf("claim webhook event: %w", err)
	}
	if !claimed {
		return "", ErrEventInProgress
	}

	outcome, applyErr := s.apply(ctx, ev)
	if err := s.MarkWebhookProcessed(ctx, stored.ID, applyErr); err != nil {
		slog.Error("failed to mark webhook processed", "provider", ev.Provider, "event_id", stored.ProviderEventID, "err", err)
	}
	return outcome, applyErr
}

func (s *Service) apply(ctx context.Context, ev *Event) (Outcome, error) {
	switch ev.Type {
	case EventAccountCreated:
		if _, _, err := s.HandleAccountCreated(ctx, ev.UserID); err != nil {
			return "", err
		}
	case EventCheckoutCompleted:
		if _, err := s.HandleCheckoutCompleted(ctx, ev.UserID, ev.Plan, ev.CustomerRef, ev.SubscriptionRef); err != nil {
			return "", err
		}
	case EventSubscriptionEnded:
		applied, err := s.HandleSubscriptionEnded(ctx, ev.UserID, ev.SubscriptionRef)
		if err != nil {
			return "", err
		}
		if !applied {
			return OutcomeIgnored, nil
		}
	default:
		return OutcomeIgnored, nil
	}
	return OutcomeApplied, nil
}

// HandleAccountCreated creates the free-tier record; repeats are no-ops.
func (s *Service) HandleAccountCreated(ctx context.Context, userID string) (*models.User, bool, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, false, ErrMissingUser
	}
	return s.repo.EnsureUser(ctx, userID)
}

// HandleCheckoutCompleted upgrades the user to pro, resets usage and stores
// the subscription. The user is created first when the identity event has
// not arrived yet.
func (s *Service) HandleCheckoutCompleted(ctx context.Context, userID, plan, customerRef, subscriptionRef string) (*models.User, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrMissingUser
	}
	p := normalizePlan(plan)
	if p == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedPlan, plan)
	}
	if _, _, err := s.repo.EnsureUser(ctx, userID); err != nil {
		return nil, err
	}

	tier := tierForPlan(p)
	return s.repo.ApplyTierChange(ctx, userID, TierChange{
		Tier:       tier,
		TokenLimit: entitlements.TokenLimit(tier),
		ResetUsage: true,
		Subscription: &models.Subscription{
			Plan:                 p,
			Status:               models.SubscriptionStatusActive,
			StripeCustomerID:     customerRef,
			StripeSubscriptionID: subscriptionRef,
			UpdatedAt:            s.now(),
		},
	})
}

// HandleSubscriptionEnded reverts the user to free when the processor reports
// the subscription gone. Usage is kept. Events for a subscription other than
// the one on record are ignored and reported as not applied.
func (s *Service) HandleSubscriptionEnded(ctx context.Context, userID, subscriptionRef string) (bool, error) {
	if strings.TrimSpace(userID) == "" {
		return false, ErrMissingUser
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}

	sub := models.Subscription{Plan: PlanPro}
	if user.Subscription != nil {
		sub = *user.Subscription
		if sub.StripeSubscriptionID != "" && subscriptionRef != "" && sub.StripeSubscriptionID != subscriptionRef {
			return false, nil
		}
	}
	sub.Status = models.SubscriptionStatusInactive
	sub.UpdatedAt = s.now()

	_, err = s.repo.ApplyTierChange(ctx, userID, TierChange{
		Tier:         entitlements.TierFree,
		TokenLimit:   entitlements.FreeTokenLimit,
		Subscription: &sub,
	})
	return err == nil, err
}

// CancelAtPeriodEnd asks the processor to stop renewal and marks the local
// subscription canceled. Tier and limit stay until the processor reports the
// period end.
func (s *Service) CancelAtPeriodEnd(ctx context.Context, userID string) (*CancelResult, error) {
	if s.gateway == nil {
		return nil, ErrGatewayDisabled
	}
	user, err := s.repo.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Subscription == nil || user.Subscription.Status != models.SubscriptionStatusActive || user.Subscription.StripeSubscriptionID == "" {
		return nil, ErrNoActiveSubscription
	}

	periodEnd, err := s.gateway.CancelAtPeriodEnd(ctx, user.Subscription.StripeSubscriptionID)
	if err != nil {
		return nil, fmt.Errorf("cancel subscription: %w", err)
	}

	sub := *user.Subscription
	sub.Status = models.SubscriptionStatusCanceled
	sub.CancelAtPeriodEnd = true
	sub.CurrentPeriodEnd = periodEnd
	sub.UpdatedAt = s.now()
	updated, err := s.repo.SaveSubscription(ctx, userID, &sub)
	if err != nil {
		return nil, err
	}
	return &CancelResult{User: updated, CurrentPeriodEnd: periodEnd}, nil
}

// CreateCheckout starts a hosted checkout for the plan and returns its URL.
func (s *Service) CreateCheckout(ctx context.Context, userID, plan string) (string, error) {
	if s.gateway == nil {
		return "", ErrGatewayDisabled
	}
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUser
	}
	if strings.ToUpper(strings.TrimSpace(plan)) != PlanPro {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedPlan, plan)
	}
	return s.gateway.CreateCheckoutSession(ctx, userID, PlanPro)
}

// RecordWebhookEvent persists webhook payloads idempotently.
func (s *Service) RecordWebhookEvent(ctx context.Context, in WebhookEventInput) (bool, *models.BillingWebhookEvent, error) {
	provider := strings.ToLower(strings.TrimSpace(in.Provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(in.ProviderEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(in.PayloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}

	event := &models.BillingWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(in.EventType),
		PayloadJSON:     in.PayloadJSON,
		SignatureValid:  in.SignatureValid,
	}
	return s.repo.CreateWebhookEventIfNotExists(ctx, event)
}

// MarkWebhookProcessed marks an event as processed and stores an optional error.
func (s *Service) MarkWebhookProcessed(ctx context.Context, webhookEventID uint, processingErr error) error {
	if webhookEventID == 0 {
		return errors.New("webhook_event_id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.repo.MarkWebhookProcessed(ctx, webhookEventID, errMsg)
}
