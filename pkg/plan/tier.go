package plan

// Tier is a subscription plan tier.
type Tier string

// Known tiers. Tenants on an unrecognized tier are governed by free limits.
const (
	TierFree       Tier = "free"
	TierPro        Tier = "pro"
	TierEnterprise Tier = "enterprise"
)

// Tiers returns all known tiers in ascending order of entitlement.
func Tiers() []Tier {
	return []Tier{TierFree, TierPro, TierEnterprise}
}

// ParseTier maps a raw plan identifier to a known Tier.
// Unknown values map to TierFree so a bad plan record can never
// grant more than the most restrictive limits.
func ParseTier(s string) Tier {
	switch Tier(s) {
	case TierPro:
		return TierPro
	case TierEnterprise:
		return TierEnterprise
	default:
		return TierFree
	}
}

// Valid reports whether t is one of the known tiers.
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPro, TierEnterprise:
		return true
	}
	return false
}

func (t Tier) String() string { return string(t) }
