package entitlements

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]Tier{
		"premium":  TierPremium,
		" Premium": TierPremium,
		"FAMILY":   TierFamily,
		"free":     TierFree,
		"":         TierFree,
		"gibberis": TierFree,
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRankOrdering(t *testing.T) {
	if !(Rank(TierFree) < Rank(TierPremium) && Rank(TierPremium) < Rank(TierFamily)) {
		t.Fatalf("tier ranks out of order: free=%d premium=%d family=%d",
			Rank(TierFree), Rank(TierPremium), Rank(TierFamily))
	}
}

func TestFeatureGates(t *testing.T) {
	if AllowsOffline(TierFree) {
		t.Fatalf("free tier must not allow offline downloads")
	}
	if !AllowsOffline(TierPremium) || !AllowsOffline(TierFamily) {
		t.Fatalf("paid tiers must allow offline downloads")
	}
	if MaxProfiles(TierFamily) <= MaxProfiles(TierPremium) {
		t.Fatalf("family must grant more profiles than premium")
	}
}
