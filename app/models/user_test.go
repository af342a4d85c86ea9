package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriptionScan(t *testing.T) {
	var s Subscription
	require.NoError(t, s.Scan([]byte(`{"plan":"PRO","status":"active","stripeCustomerId":"cus_1"}`)))
	assert.Equal(t, "PRO", s.Plan)
	assert.Equal(t, SubscriptionStatusActive, s.Status)
	assert.Equal(t, "cus_1", s.StripeCustomerID)

	require.NoError(t, s.Scan(`{"plan":"PRO","status":"canceled","cancel_at_period_end":true}`))
	assert.True(t, s.CancelAtPeriodEnd)
	assert.Empty(t, s.StripeCustomerID)

	require.NoError(t, s.Scan(nil))
	assert.Equal(t, Subscription{}, s)

	assert.Error(t, s.Scan(42))
}

func TestSubscriptionValue(t *testing.T) {
	s := Subscription{Plan: "PRO", Status: SubscriptionStatusActive, UpdatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)}
	v, err := s.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"plan":"PRO","status":"active","cancel_at_period_end":false,"updated_at":"2024-01-02T03:04:05Z"}`, v.(string))
}

func TestUserRemainingTokens(t *testing.T) {
	assert.Equal(t, int64(2000), (&User{TokenUsage: 3000, TokenLimit: 5000}).RemainingTokens())
	assert.Equal(t, int64(0), (&User{TokenUsage: 5001, TokenLimit: 5000}).RemainingTokens())
}

func TestTestHistoryBeforeCreate(t *testing.T) {
	h := &TestHistory{UserID: "user_1"}
	require.NoError(t, h.BeforeCreate(nil))
	assert.Len(t, h.ID, 36)
	assert.False(t, h.Timestamp.IsZero())

	fixed := &TestHistory{ID: "keep", Timestamp: time.Unix(10, 0)}
	require.NoError(t, fixed.BeforeCreate(nil))
	assert.Equal(t, "keep", fixed.ID)
	assert.Equal(t, time.Unix(10, 0), fixed.Timestamp)
}
