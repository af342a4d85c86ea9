package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
)

const maxHistoryPage = 100

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, entry *models.TestHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListByUser returns the newest entries first.
func (r *historyRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.TestHistory, error) {
	if limit <= 0 || limit > maxHistoryPage {
		limit = maxHistoryPage
	}
	var entries []models.TestHistory
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

func (r *historyRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TestHistory{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}
