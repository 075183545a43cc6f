package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"spendlens/internal/tui/theme"
)

// RenderStatusBar renders the bottom status bar. lastPoll is a humanized
// age of the most recent successful fetch; offline marks a backend that
// failed its last poll.
func RenderStatusBar(width int, lastPoll string, offline bool) string {
	t := theme.Active

	style := lipgloss.NewStyle().
		Foreground(t.TextMuted).
		Width(width)

	left := " [d]ismiss  [r]efresh  [?]help  [q]uit"
	right := ""
	if lastPoll != "" {
		right = fmt.Sprintf("Updated: %s ", lastPoll)
	}
	if offline {
		offStyle := lipgloss.NewStyle().Foreground(t.TextDim)
		right = offStyle.Render("offline") + "  " + right
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	bar := left
	for i := 0; i < padding; i++ {
		bar += " "
	}
	bar += right

	return style.Render(bar)
}
