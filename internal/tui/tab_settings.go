package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spendlens/internal/config"
	"spendlens/internal/tui/components"
	"spendlens/internal/tui/theme"
)

type settingsState struct {
	cursor  int
	saveErr error
	saved   bool
}

func (a App) updateSettingsKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		if a.settings.cursor < len(theme.All)-1 {
			a.settings.cursor++
		}
	case "k", "up":
		if a.settings.cursor > 0 {
			a.settings.cursor--
		}
	case "enter":
		chosen := theme.All[a.settings.cursor]
		theme.SetActive(chosen.Name)
		a.cfg.Appearance.Theme = chosen.Name
		a.settings.saveErr = config.Save(a.cfg)
		a.settings.saved = a.settings.saveErr == nil
	}
	return a, nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	accentStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	greenStyle := lipgloss.NewStyle().Foreground(t.Green)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange)

	var info strings.Builder
	info.WriteString(labelStyle.Render("Backend   ") + valueStyle.Render(a.cfg.Server.BaseURL) + "\n")
	info.WriteString(labelStyle.Render("Polling   ") + valueStyle.Render(fmt.Sprintf("every %ds", a.cfg.Alerts.PollIntervalSec)) + "\n")
	info.WriteString(labelStyle.Render("Currency  ") + valueStyle.Render(a.symbol) + "\n")
	info.WriteString(labelStyle.Render("Config    ") + valueStyle.Render(config.ConfigPath()))

	var themes strings.Builder
	for i, th := range theme.All {
		marker := "( )"
		style := labelStyle
		if th.Name == a.cfg.Appearance.Theme {
			marker = "(o)"
		}
		if i == a.settings.cursor {
			style = accentStyle
		}
		themes.WriteString(style.Render(fmt.Sprintf("%s %s", marker, th.Name)))
		themes.WriteString("\n")
	}
	themes.WriteString("\n" + labelStyle.Render("j/k to select, Enter to apply"))
	if a.settings.saveErr != nil {
		themes.WriteString("\n" + warnStyle.Render("Could not save: "+a.settings.saveErr.Error()))
	} else if a.settings.saved {
		themes.WriteString("\n" + greenStyle.Render("Saved."))
	}

	return components.ContentCard("Connection", info.String(), cw) + "\n" +
		components.ContentCard("Theme", themes.String(), cw)
}
