package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
)

type usageRepository struct {
	db *gorm.DB
}

func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// AddDaily upserts each entry, adding to the existing day total.
func (r *usageRepository) AddDaily(ctx context.Context, entries []DailyUsage) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, e := range entries {
			if e.Tokens == 0 || e.UserID == "" {
				continue
			}
			row := &models.UsageTracking{UserID: e.UserID, Date: e.Date, TokensUsed: e.Tokens}
			err := tx.Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
				DoUpdates: clause.Assignments(map[string]interface{}{
					"tokens_used": gorm.Expr("tokens_used + ?", e.Tokens),
					"updated_at":  now,
				}),
			}).Create(row).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// ListDaily returns the user's rows from sinceDate (inclusive), oldest first.
func (r *usageRepository) ListDaily(ctx context.Context, userID, sinceDate string) ([]models.UsageTracking, error) {
	var rows []models.UsageTracking
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND date >= ?", userID, sinceDate).
		Order("date ASC").
		Find(&rows).Error
	return rows, err
}
