package billing

import (
	"strings"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
)

// PlanPro is the only plan sold through checkout; enterprise is provisioned
// out of band.
const PlanPro = "PRO"

func normalizePlan(plan string) string {
	switch strings.ToUpper(strings.TrimSpace(plan)) {
	case PlanPro, "":
		return PlanPro
	default:
		return ""
	}
}

func tierForPlan(plan string) entitlements.Tier {
	if normalizePlan(plan) == PlanPro {
		return entitlements.TierPro
	}
	return entitlements.TierFree
}
