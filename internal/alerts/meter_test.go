package alerts

import "testing"

func TestTierThresholdLadder(t *testing.T) {
	cases := []struct {
		pct  float64
		want Tier
	}{
		{45, TierNeutral},
		{89.99, TierNeutral},
		{90, TierWarning},
		{99, TierWarning},
		{100, TierWarning}, // 100 is warning, not danger: overflow is strict
		{100.01, TierDanger},
		{120, TierDanger},
		{0, TierNeutral},
	}

	for _, tc := range cases {
		if got := TierFor(tc.pct); got != tc.want {
			t.Fatalf("TierFor(%v) = %d, want %d", tc.pct, got, tc.want)
		}
	}
}

func TestFillPercentCapsAtHundred(t *testing.T) {
	cases := []struct {
		pct  float64
		want float64
	}{
		{45, 45},
		{100, 100},
		{150, 100},
		{-3, 0},
	}

	for _, tc := range cases {
		if got := FillPercent(tc.pct); got != tc.want {
			t.Fatalf("FillPercent(%v) = %v, want %v", tc.pct, got, tc.want)
		}
	}
}
