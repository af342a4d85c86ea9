package billing

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
)

const clerkUserCreated = "user.created"

type clerkWebhook struct {
	Type string `json:"type"`
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ParseClerkEvent verifies a Clerk delivery and normalizes it. Only
// user.created changes state; other types come back as EventIgnored.
func ParseClerkEvent(payload []byte, h SvixHeaders, secret string, now time.Time) (*Event, error) {
	if err := VerifySvixSignature(payload, h, secret, now); err != nil {
		return nil, err
	}

	var w clerkWebhook
	if err := json.Unmarshal(payload, &w); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	ev := &Event{
		Provider: models.BillingProviderClerk,
		ID:       h.ID,
		Type:     EventIgnored,
		RawType:  w.Type,
		Payload:  payload,
	}
	if w.Type == clerkUserCreated {
		if w.Data.ID == "" {
			return nil, fmt.Errorf("%w: user.created without id", ErrInvalidPayload)
		}
		ev.Type = EventAccountCreated
		ev.UserID = w.Data.ID
	}
	return ev, nil
}
