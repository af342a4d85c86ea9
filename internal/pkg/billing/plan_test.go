package billing

import (
	"testing"

	"github.com/GenTestOfficial/GenTest-Website/internal/pkg/entitlements"
)

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "PRO", want: "PRO"},
		{in: " pro ", want: "PRO"},
		{in: "", want: "PRO"},
		{in: "enterprise", want: ""},
		{in: "gold", want: ""},
	}

	for _, tt := range tests {
		if got := normalizePlan(tt.in); got != tt.want {
			t.Fatalf("normalizePlan(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTierForPlan(t *testing.T) {
	if tierForPlan("PRO") != entitlements.TierPro {
		t.Fatalf("expected PRO to map to pro tier")
	}
	if tierForPlan("unknown") != entitlements.TierFree {
		t.Fatalf("expected unknown plan to map to free tier")
	}
}
