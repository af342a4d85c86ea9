package models

import "time"

const UsageDateLayout = "2006-01-02"

// UsageTracking aggregates metered tokens per user and UTC day for reporting.
// The quota gate never reads it.
type UsageTracking struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(191);not null;index:ux_usage_trackings_user_date,unique,priority:1" json:"user_id"`
	Date       string    `gorm:"type:varchar(10);not null;index:ux_usage_trackings_user_date,unique,priority:2" json:"date"`
	TokensUsed int64     `gorm:"not null;default:0" json:"tokens_used"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
