package models

import "time"

const (
	BillingProviderStripe = "stripe"
	BillingProviderClerk  = "clerk"
)

// BillingWebhookEvent stores verified billing and identity webhook deliveries
// keyed by the sender's event id, so replays are acknowledged without being
// applied twice.
type BillingWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_billing_webhook_events_provider_event,unique,priority:1" json:"provider"`
	ProviderEventID string     `gorm:"type:varchar(191);not null;index:ux_billing_webhook_events_provider_event,unique,priority:2" json:"provider_event_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false" json:"signature_valid"`
	ClaimedAt       *time.Time `gorm:"default:null" json:"claimed_at,omitempty"`
	ProcessedAt     *time.Time `gorm:"default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Processed reports whether the event was handled, successfully or not.
func (e *BillingWebhookEvent) Processed() bool {
	return e.ProcessedAt != nil
}
