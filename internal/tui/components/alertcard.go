package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"spendlens/internal/alerts"
	"spendlens/internal/cli"
	"spendlens/internal/model"
	"spendlens/internal/tui/theme"
)

// AlertCard renders one budget alert as a bordered card. The border, icon,
// and status line all take the severity tone; an overrun budget shows the
// overage as a positive amount under an "Over:" label.
func AlertCard(symbol string, a model.Alert, outerWidth int) string {
	t := theme.Active
	profile := alerts.Classify(a.Level)
	tone := t.ToneColor(profile.Tone)

	contentWidth := outerWidth - 2
	if contentWidth < 20 {
		contentWidth = 20
	}

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(tone).
		Width(contentWidth).
		Padding(0, 1)

	iconStyle := lipgloss.NewStyle().Foreground(tone).Bold(true)
	titleStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Bold(true)
	msgStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	amountStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	statusStyle := lipgloss.NewStyle().Foreground(tone).Bold(true)

	var status string
	if a.Overspent() {
		status = "Over: " + cli.FormatAmount(symbol, a.Remaining.Abs())
	} else {
		status = "Left: " + cli.FormatAmount(symbol, a.Remaining)
	}

	spent := fmt.Sprintf("%s of %s",
		cli.FormatAmount(symbol, a.SpentAmount),
		cli.FormatAmount(symbol, a.BudgetAmount))

	barWidth := contentWidth - 10
	if barWidth < 10 {
		barWidth = 10
	}

	var b strings.Builder
	b.WriteString(iconStyle.Render(profile.Icon) + " " + titleStyle.Render(a.Category))
	b.WriteString("\n")
	b.WriteString(msgStyle.Render(a.Message))
	b.WriteString("\n")
	b.WriteString(amountStyle.Render(spent) + "  " + statusStyle.Render(status))
	b.WriteString("\n")
	b.WriteString(UsageMeter(a.Percentage, barWidth))

	return cardStyle.Render(b.String())
}

// AlertPanel renders the alert cards that survive dismissal filtering,
// stacked vertically. While the first fetch is in flight, and whenever
// nothing is left to show, it renders nothing at all.
func AlertPanel(symbol string, snap alerts.Snapshot, tracker *alerts.Tracker, width int) string {
	if snap.Loading {
		return ""
	}

	visible := tracker.Visible(snap.Alerts)
	if len(visible) == 0 {
		return ""
	}

	cards := make([]string, 0, len(visible))
	for _, a := range visible {
		cards = append(cards, AlertCard(symbol, a, width))
	}
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}
