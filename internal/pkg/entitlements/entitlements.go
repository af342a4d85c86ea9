package entitlements

import (
	"errors"
	"math"
	"strings"

	"github.com/GenTestOfficial/GenTest-Website/app/models"
)

type Tier string

const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

const (
	FreeTokenLimit       int64 = 5000
	ProTokenLimit        int64 = 100000
	EnterpriseTokenLimit int64 = math.MaxInt64
)

var (
	ErrQuotaExceeded    = errors.New("token limit exceeded")
	ErrModelNotEntitled = errors.New("model requires a higher tier")
	ErrUnknownModel     = errors.New("unknown model")
)

// NormalizeTier maps stored tier strings onto a known tier; unknown values are free.
func NormalizeTier(tier string) Tier {
	switch Tier(strings.ToLower(strings.TrimSpace(tier))) {
	case TierPro:
		return TierPro
	case TierEnterprise:
		return TierEnterprise
	default:
		return TierFree
	}
}

func tierRank(t Tier) int {
	switch NormalizeTier(string(t)) {
	case TierEnterprise:
		return 2
	case TierPro:
		return 1
	default:
		return 0
	}
}

// TokenLimit returns the quota ceiling provisioned for a tier.
func TokenLimit(t Tier) int64 {
	switch NormalizeTier(string(t)) {
	case TierEnterprise:
		return EnterpriseTokenLimit
	case TierPro:
		return ProTokenLimit
	default:
		return FreeTokenLimit
	}
}

// Entitled reports whether a tier may use models requiring the given tier.
func Entitled(t, required Tier) bool {
	return tierRank(t) >= tierRank(required)
}

// Decision is the outcome of a quota gate evaluation.
type Decision int

const (
	Allow Decision = iota
	DenyQuotaExceeded
	DenyModelNotEntitled
)

// Err returns the sentinel error for a denial, nil when allowed.
func (d Decision) Err() error {
	switch d {
	case DenyQuotaExceeded:
		return ErrQuotaExceeded
	case DenyModelNotEntitled:
		return ErrModelNotEntitled
	default:
		return nil
	}
}

func (d Decision) Allowed() bool {
	return d == Allow
}

// Admit evaluates the quota gate for a freshly read user record. The quota
// check wins over the tier check so an exhausted user always sees a quota
// denial.
func Admit(user *models.User, model Model) Decision {
	if user.TokenUsage >= user.TokenLimit {
		return DenyQuotaExceeded
	}
	if !Entitled(NormalizeTier(user.Tier), model.TierRequired) {
		return DenyModelNotEntitled
	}
	return Allow
}
