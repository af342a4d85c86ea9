package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
)

var ErrEmptyUserID = errors.New("user id is required")

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// GetByID always reads from the store; entitlement decisions use this value.
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) EnsureUser(ctx context.Context, id string) (*models.User, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, false, ErrEmptyUserID
	}

	u := &models.User{
		ID:          id,
		Tier:        string(entitlements.TierFree),
		TokenUsage:  0,
		TokenLimit:  entitlements.FreeTokenLimit,
		LastUpdated: time.Now().UTC(),
	}
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(u)
	if tx.Error != nil {
		return nil, false, tx.Error
	}
	created := tx.RowsAffected > 0

	stored, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return stored, created, nil
}

func (r *userRepository) IncrementUsage(ctx context.Context, id string, tokens int64) (*models.User, error) {
	tx := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"token_usage":  gorm.Expr("token_usage + ?", tokens),
			"last_updated": time.Now().UTC(),
		})
	if tx.Error != nil {
		return nil, tx.Error
	}
	if tx.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetByID(ctx, id)
}
