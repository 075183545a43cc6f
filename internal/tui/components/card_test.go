package components

import (
	"strings"
	"testing"
)

func TestLayoutRowSumsToTotal(t *testing.T) {
	cases := []struct {
		total, n int
		want     []int
	}{
		{10, 3, []int{4, 3, 3}},
		{12, 4, []int{3, 3, 3, 3}},
		{7, 2, []int{4, 3}},
	}

	for _, tc := range cases {
		got := LayoutRow(tc.total, tc.n)
		sum := 0
		for i, w := range got {
			sum += w
			if w != tc.want[i] {
				t.Fatalf("LayoutRow(%d, %d) = %v, want %v", tc.total, tc.n, got, tc.want)
			}
		}
		if sum != tc.total {
			t.Fatalf("LayoutRow(%d, %d) sums to %d", tc.total, tc.n, sum)
		}
	}

	if got := LayoutRow(10, 0); got != nil {
		t.Fatalf("LayoutRow with n=0 = %v, want nil", got)
	}
}

func TestUsageMeterKeepsTruePercentage(t *testing.T) {
	out := UsageMeter(120, 10)
	if !strings.Contains(out, "120%") {
		t.Fatalf("overrun meter hides true percentage: %q", out)
	}

	out = UsageMeter(52, 10)
	if !strings.Contains(out, "52%") {
		t.Fatalf("meter missing percentage: %q", out)
	}
}
