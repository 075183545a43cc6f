package tui

import (
	"context"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"spendlens/internal/api"
	"spendlens/internal/config"
	"spendlens/internal/tui/theme"
)

// setupValues backs the first-run huh form.
type setupValues struct {
	baseURL  string
	username string
	password string
	theme    string
}

func newSetupForm(vals *setupValues, cfg config.Config) *huh.Form {
	vals.baseURL = cfg.Server.BaseURL
	vals.theme = cfg.Appearance.Theme

	themeOptions := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOptions = append(themeOptions, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Backend URL").
				Description("Where your spendlens server is running.").
				Value(&vals.baseURL),
			huh.NewInput().
				Title("Username").
				Value(&vals.username),
			huh.NewInput().
				Title("Password").
				EchoMode(huh.EchoModePassword).
				Value(&vals.password),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOptions...).
				Value(&vals.theme),
		),
	)
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted && !a.setupBusy {
		a.setupBusy = true
		return a, loginCmd(a.setupVals)
	}

	if a.setupForm.State == huh.StateAborted {
		return a, tea.Quit
	}

	return a, cmd
}

// loginCmd exchanges the wizard's credentials for a bearer token.
func loginCmd(vals *setupValues) tea.Cmd {
	return func() tea.Msg {
		client := api.NewClient(strings.TrimSpace(vals.baseURL), nil)
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		token, err := client.Login(ctx, strings.TrimSpace(vals.username), vals.password)
		return setupDoneMsg{token: token, err: err}
	}
}

func (a App) finishSetup(msg setupDoneMsg) (tea.Model, tea.Cmd) {
	a.setupBusy = false

	if msg.err != nil {
		// Re-open the form so the user can correct the credentials.
		a.setupErr = msg.err
		a.setupForm = newSetupForm(a.setupVals, a.cfg)
		if a.width > 0 {
			a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
		}
		return a, a.setupForm.Init()
	}

	a.cfg.Server.BaseURL = strings.TrimSpace(a.setupVals.baseURL)
	a.cfg.Server.Token = msg.token
	a.cfg.Appearance.Theme = a.setupVals.theme
	theme.SetActive(a.cfg.Appearance.Theme)
	_ = config.Save(a.cfg)

	cfg := a.cfg
	a.client = api.NewClient(cfg.Server.BaseURL, func() string { return config.GetToken(cfg) })
	a.needSetup = false
	a.setupForm = nil
	a.setupErr = nil

	return a, tea.Batch(
		fetchAlertsCmd(a.client),
		fetchOverviewCmd(a.client),
		pollTickCmd(a.interval),
	)
}

func (a App) viewSetup() string {
	t := theme.Active

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	subStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	errStyle := lipgloss.NewStyle().Foreground(t.Red)

	var b strings.Builder
	b.WriteString("\n  ")
	b.WriteString(titleStyle.Render("◈ spendlens"))
	b.WriteString(subStyle.Render(" · first-run setup"))
	b.WriteString("\n")
	if a.setupErr != nil {
		b.WriteString("  " + errStyle.Render("Login failed: "+a.setupErr.Error()))
		b.WriteString("\n")
	}
	if a.setupBusy {
		b.WriteString("\n  " + a.spinner.View() + subStyle.Render(" signing in..."))
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(a.setupForm.View())
	return b.String()
}
