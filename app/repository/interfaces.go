package repository

import (
	"context"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
	"gorm.io/gorm"
)

// UserRepository is the entitlement store as seen by the generation pipeline.
// Tier and subscription writes live in the billing package.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	// EnsureUser inserts a free-tier record unless one exists; created reports
	// whether this call inserted it.
	EnsureUser(ctx context.Context, id string) (user *models.User, created bool, err error)
	// IncrementUsage atomically adds tokens to token_usage and returns the
	// stored record.
	IncrementUsage(ctx context.Context, id string, tokens int64) (*models.User, error)
}

// HistoryRepository stores immutable generation history.
type HistoryRepository interface {
	Create(ctx context.Context, entry *models.TestHistory) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.TestHistory, error)
	CountByUser(ctx context.Context, userID string) (int64, error)
}

// DailyUsage is one pending per-day increment.
type DailyUsage struct {
	UserID string
	Date   string
	Tokens int64
}

// UsageRepository maintains the per-day usage rollup.
type UsageRepository interface {
	AddDaily(ctx context.Context, entries []DailyUsage) error
	ListDaily(ctx context.Context, userID, sinceDate string) ([]models.UsageTracking, error)
}

// Repositories holds all repository instances
type Repositories struct {
	User    UserRepository
	History HistoryRepository
	Usage   UsageRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		History: NewHistoryRepository(db),
		Usage:   NewUsageRepository(db),
	}
}
