package subscription

import (
	"strings"

	"github.com/streamnest-app/streamnest/internal/pkg/entitlements"
)

// MatchSource records how a product resolved to a tier, so that grants from
// the fail-open fallback paths stay observable in logs and counters.
type MatchSource string

const (
	SourceProduct     MatchSource = "product"
	SourceEntitlement MatchSource = "entitlement"
	SourceHeuristic   MatchSource = "heuristic"
	SourceDefault     MatchSource = "default"
)

// TierMap maps provider product and entitlement identifiers to internal
// tiers. It is injected into the dispatcher so tests can substitute fixtures.
type TierMap map[string]entitlements.Tier

// DefaultTierMap covers the store-specific SKUs currently sold. Provider
// catalogs drift independently of this table; Resolve falls back rather than
// denying access for a SKU added after this code shipped.
func DefaultTierMap() TierMap {
	return TierMap{
		// App Store
		"streamnest_premium_monthly": entitlements.TierPremium,
		"streamnest_premium_yearly":  entitlements.TierPremium,
		"streamnest_family_monthly":  entitlements.TierFamily,
		"streamnest_family_yearly":   entitlements.TierFamily,
		// Play Store
		"premium_monthly": entitlements.TierPremium,
		"premium_yearly":  entitlements.TierPremium,
		"family_monthly":  entitlements.TierFamily,
		"family_yearly":   entitlements.TierFamily,
		// Stripe price lookup keys
		"price_premium_month": entitlements.TierPremium,
		"price_premium_year":  entitlements.TierPremium,
		"price_family_month":  entitlements.TierFamily,
		"price_family_year":   entitlements.TierFamily,
		// Entitlement identifiers
		"premium_access": entitlements.TierPremium,
		"family_access":  entitlements.TierFamily,
	}
}

// Resolve maps a product to a tier. Order: exact product match, exact
// entitlement match, substring heuristic, then the premium default. The
// last two fail open toward "some access" instead of "no access" - an
// unrecognized SKU must not silently strip a paying customer's entitlement.
func (m TierMap) Resolve(productID string, entitlementIDs []string) (entitlements.Tier, MatchSource) {
	if tier, ok := m[productID]; ok {
		return tier, SourceProduct
	}
	for _, id := range entitlementIDs {
		if tier, ok := m[id]; ok {
			return tier, SourceEntitlement
		}
	}

	p := strings.ToLower(productID)
	if strings.Contains(p, "family") {
		return entitlements.TierFamily, SourceHeuristic
	}
	if strings.Contains(p, "premium") || strings.Contains(p, "pro") {
		return entitlements.TierPremium, SourceHeuristic
	}

	return entitlements.TierPremium, SourceDefault
}
