package alerts

// Tier is the fill color bucket of the usage meter.
type Tier int

const (
	TierNeutral Tier = iota
	TierWarning
	TierDanger
)

// TierFor returns the meter tier for a spend percentage. The boundaries are
// asymmetric on purpose: overflow requires strictly more than 100, the
// warning band starts at exactly 90.
func TierFor(pct float64) Tier {
	switch {
	case pct > 100:
		return TierDanger
	case pct >= 90:
		return TierWarning
	default:
		return TierNeutral
	}
}

// FillPercent returns the visual fill width for a spend percentage, capped
// at 100 regardless of true overage and clamped at 0.
func FillPercent(pct float64) float64 {
	if pct > 100 {
		return 100
	}
	if pct < 0 {
		return 0
	}
	return pct
}
