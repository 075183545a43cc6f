package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"spendlens/internal/cli"
	"spendlens/internal/model"
	"spendlens/internal/tui/components"
	"spendlens/internal/tui/theme"
)

// Tab indexes, matching components.Tabs order.
const (
	tabOverview = iota
	tabAlerts
	tabChat
	tabSettings
)

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active

	if a.summary == nil {
		return "\n  " + a.spinner.View() + " Loading this month's activity..."
	}

	metrics := []components.Metric{
		{Label: "Income", Value: cli.FormatAmount(a.symbol, a.summary.Income)},
		{Label: "Expenses", Value: cli.FormatAmount(a.symbol, a.summary.Expense)},
		{Label: "Net", Value: cli.FormatAmount(a.symbol, a.summary.Net), Note: netNote(a.summary.Net)},
		{Label: "Alerts", Value: fmt.Sprintf("%d", len(a.tracker.Visible(a.snap.Alerts)))},
	}

	var b strings.Builder
	b.WriteString(components.MetricRow(metrics, cw))
	b.WriteString("\n")

	// Top spending categories this month
	if len(a.summary.Categories) > 0 {
		inner := components.CardInnerWidth(cw)
		labelW := 14
		barW := inner - labelW - 18
		if barW < 10 {
			barW = 10
		}

		var rows []string
		shown := 0
		for _, c := range a.summary.Categories {
			if c.Type != model.TxExpense || shown >= 5 {
				continue
			}
			shown++
			rows = append(rows, fmt.Sprintf("%-*s %s %s",
				labelW, truncName(c.Category, labelW),
				components.CompactMeter(categoryShare(c.Total, a.summary.Expense), barW),
				cli.FormatAmount(a.symbol, c.Total)))
		}
		if len(rows) > 0 {
			b.WriteString(components.ContentCard("Spending by Category", strings.Join(rows, "\n"), cw))
			b.WriteString("\n")
		}
	}

	// Recent transactions
	if len(a.recent) > 0 {
		muted := lipgloss.NewStyle().Foreground(t.TextMuted)
		red := lipgloss.NewStyle().Foreground(t.Red)
		green := lipgloss.NewStyle().Foreground(t.Green)

		var rows []string
		for _, tx := range a.recent {
			amount := cli.FormatAmount(a.symbol, tx.Amount)
			if tx.Type == model.TxExpense {
				amount = red.Render("-" + amount)
			} else {
				amount = green.Render("+" + amount)
			}
			rows = append(rows, fmt.Sprintf("%s  %-14s %-24s %s",
				muted.Render(tx.Date.Format("Jan 02")),
				truncName(tx.Category, 14),
				muted.Render(truncName(tx.Description, 24)),
				amount))
		}

		// Oldest-first expense trend under the listing.
		var spend []float64
		for i := len(a.recent) - 1; i >= 0; i-- {
			if a.recent[i].Type == model.TxExpense {
				spend = append(spend, a.recent[i].Amount.InexactFloat64())
			}
		}
		if len(spend) > 1 {
			rows = append(rows, "", muted.Render("trend ")+components.Sparkline(spend, t.Accent))
		}

		b.WriteString(components.ContentCard("Recent Transactions", strings.Join(rows, "\n"), cw))
	}

	return b.String()
}

func netNote(net decimal.Decimal) string {
	if net.IsNegative() {
		return "spending exceeds income"
	}
	return ""
}

// categoryShare returns the category's share of total expenses on a 0-100
// scale for the compact meter.
func categoryShare(part, total decimal.Decimal) float64 {
	if !total.IsPositive() {
		return 0
	}
	return part.Div(total).Mul(decimal.NewFromInt(100)).InexactFloat64()
}

func truncName(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}
