package cli

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"spendlens/internal/model"
)

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"0", "₹0.00"},
		{"1234.5", "₹1,234.50"},
		{"200", "₹200.00"},
		{"-200", "-₹200.00"},
		{"1234567.891", "₹1,234,567.89"},
		{"999", "₹999.00"},
		{"1000", "₹1,000.00"},
	}

	for _, tc := range cases {
		d := decimal.RequireFromString(tc.in)
		if got := FormatAmount("₹", d); got != tc.want {
			t.Fatalf("FormatAmount(%s) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatAmountDefaultsSymbol(t *testing.T) {
	got := FormatAmount("", decimal.NewFromInt(5))
	if got != "₹5.00" {
		t.Fatalf("got %q, want ₹5.00", got)
	}
}

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-4200, "-4,200"},
	}

	for _, tc := range cases {
		if got := FormatNumber(tc.in); got != tc.want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(120); got != "120.0%" {
		t.Fatalf("got %q", got)
	}
	if got := FormatPercent(52.25); got != "52.2%" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		secs int64
		want string
	}{
		{0, "0s"},
		{45, "45s"},
		{125, "2m"},
		{3725, "1h 2m"},
	}

	for _, tc := range cases {
		if got := FormatDuration(tc.secs); got != tc.want {
			t.Fatalf("FormatDuration(%d) = %q, want %q", tc.secs, got, tc.want)
		}
	}
}

func TestRenderAlertLineOverspent(t *testing.T) {
	a := model.Alert{
		Level:     model.SeverityDanger,
		Category:  "Food",
		Message:   "over budget",
		Remaining: decimal.NewFromInt(-200),
	}

	line := RenderAlertLine("₹", a)
	if !strings.Contains(line, "Over: ₹200.00") {
		t.Fatalf("line %q missing overdraw amount", line)
	}
	if strings.Contains(line, "-₹") {
		t.Fatalf("overdraw amount should be absolute, got %q", line)
	}
	if !strings.Contains(line, "▲") {
		t.Fatalf("danger line missing ▲ icon: %q", line)
	}
}

func TestRenderAlertLineWithinBudget(t *testing.T) {
	a := model.Alert{
		Level:     model.SeverityWarning,
		Category:  "Transport",
		Message:   "approaching limit",
		Remaining: decimal.RequireFromString("83.10"),
	}

	line := RenderAlertLine("₹", a)
	if !strings.Contains(line, "Left: ₹83.10") {
		t.Fatalf("line %q missing remaining amount", line)
	}
}

func TestRenderAlertListEmpty(t *testing.T) {
	out := RenderAlertList("₹", nil)
	if !strings.Contains(out, "within limits") {
		t.Fatalf("empty list output = %q", out)
	}
}

func TestRenderUsageBarCapsFill(t *testing.T) {
	out := RenderUsageBar(150, 10)
	if strings.Count(out, "░") != 0 {
		t.Fatalf("bar at 150%% should be fully filled: %q", out)
	}
	if !strings.Contains(out, "150.0%") {
		t.Fatalf("label should show the uncapped percentage: %q", out)
	}
}
