package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TestHistory is an immutable audit record of one successful generation.
type TestHistory struct {
	ID         string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID     string    `gorm:"type:varchar(191);not null;index:idx_test_histories_user_time,priority:1" json:"user_id"`
	Code       string    `gorm:"type:longtext;not null" json:"code"`
	TestCode   string    `gorm:"type:longtext;not null" json:"test_code"`
	Framework  string    `gorm:"type:varchar(50);not null" json:"framework"`
	Language   string    `gorm:"type:varchar(50);not null" json:"language"`
	Model      string    `gorm:"type:varchar(100);not null;default:''" json:"model"`
	TokensUsed int64     `gorm:"not null;default:0" json:"tokens_used"`
	Timestamp  time.Time `gorm:"not null;index:idx_test_histories_user_time,priority:2" json:"timestamp"`
}

// BeforeCreate assigns a UUID and timestamp when missing.
func (h *TestHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	if h.Timestamp.IsZero() {
		h.Timestamp = time.Now().UTC()
	}
	return nil
}
