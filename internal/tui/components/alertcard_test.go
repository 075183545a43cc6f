package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/shopspring/decimal"

	"spendlens/internal/alerts"
	"spendlens/internal/model"
	"spendlens/internal/tui/theme"
)

func init() {
	// Plain output so tests can assert on visible text.
	lipgloss.SetColorProfile(termenv.Ascii)
	theme.SetActive("flexoki-dark")
}

func overspentAlert() model.Alert {
	return model.Alert{
		ID:           1,
		Level:        model.SeverityDanger,
		Category:     "Food",
		Message:      "You have exceeded your Food budget",
		SpentAmount:  decimal.NewFromInt(1200),
		BudgetAmount: decimal.NewFromInt(1000),
		Remaining:    decimal.NewFromInt(-200),
		Percentage:   120,
	}
}

func TestAlertCardOverspentShowsPositiveOverage(t *testing.T) {
	out := AlertCard("₹", overspentAlert(), 60)

	if !strings.Contains(out, "Over: ₹200.00") {
		t.Fatalf("card missing overage label:\n%s", out)
	}
	if strings.Contains(out, "-₹") {
		t.Fatalf("overage rendered with a negative sign:\n%s", out)
	}
	if !strings.Contains(out, "▲") {
		t.Fatalf("danger icon missing:\n%s", out)
	}
	if !strings.Contains(out, "120%") {
		t.Fatalf("true percentage missing:\n%s", out)
	}
}

func TestAlertCardUnderBudgetShowsRemaining(t *testing.T) {
	a := model.Alert{
		ID:           2,
		Level:        model.SeverityWarning,
		Category:     "Transport",
		Message:      "You are close to your Transport budget limit",
		SpentAmount:  decimal.NewFromInt(950),
		BudgetAmount: decimal.NewFromInt(1000),
		Remaining:    decimal.NewFromInt(50),
		Percentage:   95,
	}

	out := AlertCard("₹", a, 60)
	if !strings.Contains(out, "Left: ₹50.00") {
		t.Fatalf("card missing remaining label:\n%s", out)
	}
	if !strings.Contains(out, "◆") {
		t.Fatalf("warning icon missing:\n%s", out)
	}
}

func TestAlertPanelHidesWhileLoadingAndWhenEmpty(t *testing.T) {
	tracker := alerts.NewTracker()

	if out := AlertPanel("₹", alerts.Snapshot{Loading: true}, tracker, 60); out != "" {
		t.Fatalf("panel rendered during initial load:\n%s", out)
	}
	if out := AlertPanel("₹", alerts.Snapshot{}, tracker, 60); out != "" {
		t.Fatalf("panel rendered with no alerts:\n%s", out)
	}
}

func TestAlertPanelFiltersDismissed(t *testing.T) {
	food := overspentAlert()
	rent := model.Alert{
		ID:           7,
		Level:        model.SeverityInfo,
		Category:     "Rent",
		Message:      "You have used 80% of your Rent budget",
		SpentAmount:  decimal.NewFromInt(800),
		BudgetAmount: decimal.NewFromInt(1000),
		Remaining:    decimal.NewFromInt(200),
		Percentage:   80,
	}
	snap := alerts.Snapshot{Alerts: []model.Alert{food, rent}}

	tracker := alerts.NewTracker()
	tracker.Dismiss(food.ID)

	out := AlertPanel("₹", snap, tracker, 60)
	if strings.Contains(out, "Food") {
		t.Fatalf("dismissed alert still rendered:\n%s", out)
	}
	if !strings.Contains(out, "Rent") {
		t.Fatalf("surviving alert missing:\n%s", out)
	}

	tracker.Dismiss(rent.ID)
	if out := AlertPanel("₹", snap, tracker, 60); out != "" {
		t.Fatalf("panel rendered with all alerts dismissed:\n%s", out)
	}
}
