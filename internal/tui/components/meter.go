package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"spendlens/internal/alerts"
	"spendlens/internal/tui/theme"
)

// tierColor resolves a meter tier to the active theme palette.
func tierColor(tier alerts.Tier) lipgloss.Color {
	t := theme.Active
	switch tier {
	case alerts.TierDanger:
		return t.Red
	case alerts.TierWarning:
		return t.Orange
	default:
		return t.Accent
	}
}

// UsageMeter renders a budget usage bar. The fill is capped at 100% while
// the printed percentage keeps the true value, so an overrun budget shows a
// full red bar labeled e.g. 120%.
func UsageMeter(pct float64, width int) string {
	t := theme.Active

	tier := alerts.TierFor(pct)
	fill := alerts.FillPercent(pct) / 100

	bar := progress.New(
		progress.WithSolidFill(string(tierColor(tier))),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(tierColor(tier)).Bold(true)
	return bar.ViewAs(fill) + " " + pctStyle.Render(fmt.Sprintf("%3.0f%%", pct))
}

// CompactMeter is a status-bar-sized usage indicator without the numeric
// percentage.
func CompactMeter(pct float64, width int) string {
	if width < 4 {
		width = 4
	}
	t := theme.Active
	tier := alerts.TierFor(pct)

	filled := int(alerts.FillPercent(pct) / 100 * float64(width))
	if filled > width {
		filled = width
	}

	filledStyle := lipgloss.NewStyle().Foreground(tierColor(tier))
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim)
	return filledStyle.Render(strings.Repeat("█", filled)) +
		emptyStyle.Render(strings.Repeat("░", width-filled))
}
