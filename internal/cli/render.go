package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"spendlens/internal/alerts"
	"spendlens/internal/model"
)

// Theme colors (Flexoki Dark)
var (
	ColorBorder    = lipgloss.Color("#282726")
	ColorTextDim   = lipgloss.Color("#575653")
	ColorTextMuted = lipgloss.Color("#6F6E69")
	ColorText      = lipgloss.Color("#FFFCF0")
	ColorAccent    = lipgloss.Color("#3AA99F")
	ColorGreen     = lipgloss.Color("#879A39")
	ColorOrange    = lipgloss.Color("#DA702C")
	ColorRed       = lipgloss.Color("#D14D41")
	ColorBlue      = lipgloss.Color("#4385BE")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorTextMuted)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// toneStyles maps alert tones to foreground styles for plain CLI output.
var toneStyles = map[alerts.Tone]lipgloss.Style{
	alerts.ToneDanger:  lipgloss.NewStyle().Foreground(ColorRed).Bold(true),
	alerts.ToneWarning: lipgloss.NewStyle().Foreground(ColorOrange),
	alerts.ToneInfo:    lipgloss.NewStyle().Foreground(ColorBlue),
	alerts.ToneNeutral: lipgloss.NewStyle().Foreground(ColorTextMuted),
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderAlertLine renders one alert as a single colored line:
//
//	▲ Food       over budget                    Over: ₹200.00  120.0%
func RenderAlertLine(symbol string, a model.Alert) string {
	profile := alerts.Classify(a.Level)
	style, ok := toneStyles[profile.Tone]
	if !ok {
		style = toneStyles[alerts.ToneNeutral]
	}

	var status string
	if a.Overspent() {
		status = "Over: " + FormatAmount(symbol, a.Remaining.Abs())
	} else {
		status = "Left: " + FormatAmount(symbol, a.Remaining)
	}

	return fmt.Sprintf("%s %-14s %-34s %s  %s",
		style.Render(profile.Icon),
		valueStyle.Render(truncate(a.Category, 14)),
		mutedStyle.Render(truncate(a.Message, 34)),
		style.Render(status),
		dimStyle.Render(FormatPercent(a.Percentage)),
	)
}

// RenderAlertList renders a full alert listing for one-shot CLI output.
// An empty list renders a quiet all-clear line.
func RenderAlertList(symbol string, list []model.Alert) string {
	if len(list) == 0 {
		return mutedStyle.Render("All budgets within limits.") + "\n"
	}

	var b strings.Builder
	for _, a := range list {
		b.WriteString(RenderAlertLine(symbol, a))
		b.WriteString("\n")
	}
	return b.String()
}

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil
}

// RenderTable renders a bordered table with headers and rows.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			if len(h) > widths[i] {
				widths[i] = len(h)
			}
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols && len(cell) > widths[i] {
					widths[i] = len(cell)
				}
			}
		}
	}

	var b strings.Builder

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	writeRule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	writeRule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(dimStyle.Render("│"))
		for i, h := range t.Headers {
			padded := fmt.Sprintf(" %-*s ", widths[i], h)
			b.WriteString(headerStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
		writeRule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			writeRule("├", "┼", "┤")
			continue
		}

		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}

			// Right-align numeric columns (all except first)
			var padded string
			if i == 0 {
				padded = fmt.Sprintf(" %-*s ", widths[i], cell)
			} else {
				padded = fmt.Sprintf(" %*s ", widths[i], cell)
			}
			b.WriteString(valueStyle.Render(padded))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	writeRule("╰", "┴", "╯")

	return b.String()
}

// RenderUsageBar renders a text usage meter for one budget:
//
//	[██████████░░░░░░░░░░] 52.3%
//
// Fill is capped at the bar width; the color follows the overflow ladder.
func RenderUsageBar(pct float64, width int) string {
	if width <= 0 {
		width = 20
	}

	fill := alerts.FillPercent(pct)
	filled := int(fill / 100 * float64(width))
	if filled > width {
		filled = width
	}

	var style lipgloss.Style
	switch alerts.TierFor(pct) {
	case alerts.TierDanger:
		style = toneStyles[alerts.ToneDanger]
	case alerts.TierWarning:
		style = toneStyles[alerts.ToneWarning]
	default:
		style = mutedStyle
	}

	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %s", style.Render(bar), FormatPercent(pct))
}

// RenderSparkline generates a unicode block sparkline from a series of values.
func RenderSparkline(values []decimal.Decimal) string {
	if len(values) == 0 {
		return ""
	}

	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	max := values[0]
	for _, v := range values[1:] {
		if v.GreaterThan(max) {
			max = v
		}
	}
	if max.IsZero() {
		max = decimal.NewFromInt(1)
	}

	var b strings.Builder
	for _, v := range values {
		f, _ := v.Div(max).Float64()
		idx := int(f * float64(len(blocks)-1))
		if idx >= len(blocks) {
			idx = len(blocks) - 1
		}
		if idx < 0 {
			idx = 0
		}
		b.WriteRune(blocks[idx])
	}

	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
