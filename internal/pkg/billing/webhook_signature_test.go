package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	svixKey    = []byte("clerk-signing-key-0123456789")
	svixSecret = "whsec_" + base64.StdEncoding.EncodeToString(svixKey)
)

func svixHeaders(id string, ts time.Time, payload []byte, key []byte) SvixHeaders {
	stamp := strconv.FormatInt(ts.Unix(), 10)
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id + "." + stamp + "."))
	mac.Write(payload)
	return SvixHeaders{
		ID:        id,
		Timestamp: stamp,
		Signature: "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil)),
	}
}

func TestVerifySvixSignature(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)

	h := svixHeaders("msg_1", now, payload, svixKey)
	require.NoError(t, VerifySvixSignature(payload, h, svixSecret, now))

	// Rotated secrets send several signatures; any match is enough.
	h.Signature = "v1,bm90LWl0 v2,ignored " + h.Signature
	require.NoError(t, VerifySvixSignature(payload, h, svixSecret, now))
}

func TestVerifySvixSignatureRejects(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	payload := []byte(`{"type":"user.created","data":{"id":"user_1"}}`)
	valid := svixHeaders("msg_1", now, payload, svixKey)

	tests := []struct {
		name    string
		payload []byte
		headers SvixHeaders
		secret  string
		wantErr error
	}{
		{name: "missing id", payload: payload, headers: SvixHeaders{Timestamp: valid.Timestamp, Signature: valid.Signature}, secret: svixSecret, wantErr: ErrMissingSignature},
		{name: "missing signature", payload: payload, headers: SvixHeaders{ID: "msg_1", Timestamp: valid.Timestamp}, secret: svixSecret, wantErr: ErrMissingSignature},
		{name: "wrong key", payload: payload, headers: svixHeaders("msg_1", now, payload, []byte("other")), secret: svixSecret, wantErr: ErrInvalidSignature},
		{name: "tampered body", payload: []byte(`{"type":"user.created","data":{"id":"user_2"}}`), headers: valid, secret: svixSecret, wantErr: ErrInvalidSignature},
		{name: "different id", payload: payload, headers: SvixHeaders{ID: "msg_2", Timestamp: valid.Timestamp, Signature: valid.Signature}, secret: svixSecret, wantErr: ErrInvalidSignature},
		{name: "too old", payload: payload, headers: svixHeaders("msg_1", now.Add(-10*time.Minute), payload, svixKey), secret: svixSecret, wantErr: ErrInvalidSignature},
		{name: "too new", payload: payload, headers: svixHeaders("msg_1", now.Add(10*time.Minute), payload, svixKey), secret: svixSecret, wantErr: ErrInvalidSignature},
		{name: "bad secret", payload: payload, headers: valid, secret: "whsec_%%%", wantErr: ErrInvalidSignature},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := VerifySvixSignature(tt.payload, tt.headers, tt.secret, now)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseClerkEvent(t *testing.T) {
	now := time.Now()
	payload := []byte(`{"type":"user.created","data":{"id":"user_1","email_addresses":[]}}`)

	ev, err := ParseClerkEvent(payload, svixHeaders("msg_1", now, payload, svixKey), svixSecret, now)
	require.NoError(t, err)
	assert.Equal(t, EventAccountCreated, ev.Type)
	assert.Equal(t, "msg_1", ev.ID)
	assert.Equal(t, "user_1", ev.UserID)

	other := []byte(`{"type":"user.updated","data":{"id":"user_1"}}`)
	ev, err = ParseClerkEvent(other, svixHeaders("msg_2", now, other, svixKey), svixSecret, now)
	require.NoError(t, err)
	assert.Equal(t, EventIgnored, ev.Type)
	assert.Equal(t, "user.updated", ev.RawType)
}

func TestParseClerkEventRejects(t *testing.T) {
	now := time.Now()

	broken := []byte(`{"type":`)
	_, err := ParseClerkEvent(broken, svixHeaders("msg_1", now, broken, svixKey), svixSecret, now)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	noID := []byte(`{"type":"user.created","data":{}}`)
	_, err = ParseClerkEvent(noID, svixHeaders("msg_1", now, noID, svixKey), svixSecret, now)
	assert.ErrorIs(t, err, ErrInvalidPayload)

	// Signature is checked before the body is looked at.
	_, err = ParseClerkEvent(broken, SvixHeaders{}, svixSecret, now)
	assert.ErrorIs(t, err, ErrMissingSignature)
}
