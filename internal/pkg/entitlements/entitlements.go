package entitlements

import "strings"

type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
	TierFamily  Tier = "family"
)

// Normalize maps arbitrary tier strings onto a known tier, defaulting to free.
func Normalize(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case string(TierPremium):
		return TierPremium
	case string(TierFamily):
		return TierFamily
	default:
		return TierFree
	}
}

// Rank orders tiers by entitlement breadth. Family includes everything
// premium grants plus multi-profile access.
func Rank(tier Tier) int {
	switch tier {
	case TierFamily:
		return 2
	case TierPremium:
		return 1
	default:
		return 0
	}
}

// MaxProfiles returns how many watch profiles a tier may create.
func MaxProfiles(tier Tier) int {
	switch tier {
	case TierFamily:
		return 6
	case TierPremium:
		return 3
	default:
		return 1
	}
}

// AllowsOffline reports whether a tier may download content for offline use.
func AllowsOffline(tier Tier) bool {
	return tier == TierPremium || tier == TierFamily
}
