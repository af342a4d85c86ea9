package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusInactive = "inactive"
)

// User is the entitlement record of an identity-provider subject. Tier and
// subscription are written by the billing state machine only; token usage by
// metering only.
type User struct {
	ID           string        `gorm:"type:varchar(191);primaryKey" json:"id"`
	Tier         string        `gorm:"type:varchar(20);not null;default:'free';index" json:"tier"`
	TokenUsage   int64         `gorm:"not null;default:0" json:"token_usage"`
	TokenLimit   int64         `gorm:"not null;default:5000" json:"token_limit"`
	Subscription *Subscription `gorm:"type:json;default:null" json:"subscription"`
	LastUpdated  time.Time     `json:"last_updated"`
	CreatedAt    time.Time     `gorm:"autoCreateTime" json:"created_at"`
}

// RemainingTokens returns the unused part of the quota, never negative.
func (u *User) RemainingTokens() int64 {
	if u.TokenUsage >= u.TokenLimit {
		return 0
	}
	return u.TokenLimit - u.TokenUsage
}

// Subscription is the paid relationship stored as a JSON column on the user.
type Subscription struct {
	Plan                 string     `json:"plan"`
	Status               string     `json:"status"`
	StripeCustomerID     string     `json:"stripeCustomerId,omitempty"`
	StripeSubscriptionID string     `json:"stripeSubscriptionId,omitempty"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// Value implements driver.Valuer
func (s Subscription) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *Subscription) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*s = Subscription{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("invalid scan source for subscription")
	}
	if len(raw) == 0 {
		*s = Subscription{}
		return nil
	}
	return json.Unmarshal(raw, s)
}
