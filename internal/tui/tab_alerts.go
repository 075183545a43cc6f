package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"spendlens/internal/tui/components"
	"spendlens/internal/tui/theme"
)

func (a App) renderAlertsTab(cw int) string {
	t := theme.Active

	if a.snap.Loading {
		return "\n  " + a.spinner.View() + " Checking budgets..."
	}

	visible := a.tracker.Visible(a.snap.Alerts)
	if len(visible) == 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted)
		if len(a.snap.Alerts) > 0 {
			return "\n  " + muted.Render("All alerts dismissed for this session.")
		}
		return "\n  " + muted.Render("All budgets within limits.")
	}

	cursorStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	cardW := cw - 4
	var b strings.Builder
	for i, alert := range visible {
		marker := "  "
		if i == a.alertCursor {
			marker = cursorStyle.Render("▸ ")
		}
		card := components.AlertCard(a.symbol, alert, cardW)

		// Prefix only the first card line with the cursor marker.
		lines := strings.Split(card, "\n")
		for j, line := range lines {
			if j == 0 {
				b.WriteString(marker)
			} else {
				b.WriteString("  ")
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
	}

	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d of %d alerts shown", len(visible), len(a.snap.Alerts))))
	return b.String()
}
