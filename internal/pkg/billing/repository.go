package billing

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
	"github.com/GenTestOfficial/GenTest-Website/app/repository"
)

// Repository provides DB operations used by the billing service.
type Repository interface {
	EnsureUser(ctx context.Context, userID string) (*models.User, bool, error)
	GetUser(ctx context.Context, userID string) (*models.User, error)
	ApplyTierChange(ctx context.Context, userID string, change TierChange) (*models.User, error)
	SaveSubscription(ctx context.Context, userID string, sub *models.Subscription) (*models.User, error)
	CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	ClaimWebhookEvent(ctx context.Context, id uint, now, staleBefore time.Time) (bool, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error
}

type gormRepository struct {
	db    *gorm.DB
	users repository.UserRepository
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db, users: repository.NewUserRepository(db)}
}

func (r *gormRepository) EnsureUser(ctx context.Context, userID string) (*models.User, bool, error) {
	return r.users.EnsureUser(ctx, userID)
}

func (r *gormRepository) GetUser(ctx context.Context, userID string) (*models.User, error) {
	return r.users.GetByID(ctx, userID)
}

func (r *gormRepository) ApplyTierChange(ctx context.Context, userID string, change TierChange) (*models.User, error) {
	updates := map[string]interface{}{
		"tier":         string(change.Tier),
		"token_limit":  change.TokenLimit,
		"subscription": change.Subscription,
		"last_updated": time.Now().UTC(),
	}
	if change.ResetUsage {
		updates["token_usage"] = 0
	}
	return r.updateUser(ctx, userID, updates)
}

func (r *gormRepository) SaveSubscription(ctx context.Context, userID string, sub *models.Subscription) (*models.User, error) {
	return r.updateUser(ctx, userID, map[string]interface{}{
		"subscription": sub,
		"last_updated": time.Now().UTC(),
	})
}

func (r *gormRepository) updateUser(ctx context.Context, userID string, updates map[string]interface{}) (*models.User, error) {
	tx := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.users.GetByID(ctx, userID)
}

func (r *gormRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	db := r.db.WithContext(ctx)
	tx := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// ClaimWebhookEvent takes the event for processing in one conditional
// UPDATE. It fails while another delivery holds a claim newer than
// staleBefore and once the event has been processed without error.
func (r *gormRepository) ClaimWebhookEvent(ctx context.Context, id uint, now, staleBefore time.Time) (bool, error) {
	tx := r.db.WithContext(ctx).Model(&models.BillingWebhookEvent{}).
		Where("id = ?", id).
		Where("processed_at IS NULL OR COALESCE(processing_error, '') <> ''").
		Where("claimed_at IS NULL OR claimed_at < ?", staleBefore).
		Update("claimed_at", now)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

// MarkWebhookProcessed records the result and releases the claim.
func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
		"claimed_at":       nil,
	}
	return r.db.WithContext(ctx).Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
