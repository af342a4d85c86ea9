package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"hash"
	"strconv"
	"strings"
	"time"
)

const svixTolerance = 5 * time.Minute

// SvixHeaders are the signature headers Clerk sends through Svix.
type SvixHeaders struct {
	ID        string
	Timestamp string
	Signature string
}

// VerifySvixSignature checks an HMAC-SHA256 over "id.timestamp.body" against
// any v1 signature in the header. The secret is the base64 key with its
// "whsec_" prefix.
func VerifySvixSignature(payload []byte, h SvixHeaders, secret string, now time.Time) error {
	id := strings.TrimSpace(h.ID)
	ts := strings.TrimSpace(h.Timestamp)
	sigHeader := strings.TrimSpace(h.Signature)
	if id == "" || ts == "" || sigHeader == "" {
		return ErrMissingSignature
	}

	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(strings.TrimSpace(secret), "whsec_"))
	if err != nil || len(key) == 0 {
		return fmt.Errorf("%w: unusable secret", ErrInvalidSignature)
	}

	sec, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return fmt.Errorf("%w: bad timestamp", ErrInvalidSignature)
	}
	sent := time.Unix(sec, 0)
	if now.Sub(sent) > svixTolerance || sent.Sub(now) > svixTolerance {
		return fmt.Errorf("%w: timestamp outside tolerance", ErrInvalidSignature)
	}

	signed := make([]byte, 0, len(id)+len(ts)+len(payload)+2)
	signed = append(signed, id...)
	signed = append(signed, '.')
	signed = append(signed, ts...)
	signed = append(signed, '.')
	signed = append(signed, payload...)

	for _, part := range strings.Fields(sigHeader) {
		version, sig, ok := strings.Cut(part, ",")
		if !ok || version != "v1" {
			continue
		}
		decoded, err := base64.StdEncoding.DecodeString(sig)
		if err != nil {
			continue
		}
		if verifyHMAC(signed, decoded, key, sha256.New) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func verifyHMAC(payload, expectedSig, secret []byte, hashFunc func() hash.Hash) bool {
	mac := hmac.New(hashFunc, secret)
	mac.Write(payload)
	return hmac.Equal(mac.Sum(nil), expectedSig)
}
