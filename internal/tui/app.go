// Package tui provides the interactive Bubble Tea dashboard for spendlens.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"spendlens/internal/alerts"
	"spendlens/internal/api"
	"spendlens/internal/config"
	"spendlens/internal/model"
	"spendlens/internal/tui/components"
	"spendlens/internal/tui/theme"
)

const (
	minTerminalWidth = 70
	maxContentWidth  = 140
	minContentHeight = 5
)

// alertsMsg carries the result of one alert fetch.
type alertsMsg struct {
	alerts []model.Alert
	err    error
	at     time.Time
}

// overviewMsg carries the month summary and recent transactions.
type overviewMsg struct {
	summary *model.Summary
	recent  []model.Transaction
	err     error
}

// chatReplyMsg carries the assistant's answer to the last chat message.
type chatReplyMsg struct {
	reply string
	err   error
}

// pollTickMsg fires on the fixed alert polling cadence.
type pollTickMsg time.Time

// setupDoneMsg carries the login result of the first-run wizard.
type setupDoneMsg struct {
	token string
	err   error
}

// App is the root Bubble Tea model.
type App struct {
	cfg    config.Config
	client *api.Client
	symbol string

	// interval is the fixed polling cadence from config.
	interval time.Duration

	// Alert state. A failed fetch keeps the previous list and flips
	// offline instead of clearing anything.
	snap        alerts.Snapshot
	tracker     *alerts.Tracker
	alertCursor int
	offline     bool
	lastFetch   time.Time

	// Overview data
	summary *model.Summary
	recent  []model.Transaction

	// Per-tab state
	chat     chatState
	settings settingsState

	// First-run setup (huh form). setupVals is heap-allocated because the
	// form keeps pointers into it across model copies.
	setupForm *huh.Form
	setupVals *setupValues
	needSetup bool
	setupBusy bool
	setupErr  error

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	spinner   spinner.Model
}

// NewApp creates the dashboard model from loaded config.
func NewApp(cfg config.Config) App {
	theme.SetActive(cfg.Appearance.Theme)

	interval := time.Duration(cfg.Alerts.PollIntervalSec) * time.Second
	if interval < 2*time.Second {
		interval = alerts.DefaultInterval
	}

	symbol := cfg.Alerts.CurrencySymbol
	if symbol == "" {
		symbol = "₹"
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent)

	a := App{
		cfg:       cfg,
		client:    api.NewClient(cfg.Server.BaseURL, func() string { return config.GetToken(cfg) }),
		symbol:    symbol,
		interval:  interval,
		snap:      alerts.Snapshot{Loading: true},
		tracker:   alerts.NewTracker(),
		chat:      newChatState(),
		needSetup: !config.Exists() || config.GetToken(cfg) == "",
		spinner:   sp,
	}
	if a.needSetup {
		a.setupVals = &setupValues{}
		a.setupForm = newSetupForm(a.setupVals, cfg)
	}
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.spinner.Tick}
	if a.needSetup {
		cmds = append(cmds, a.setupForm.Init())
		return tea.Batch(cmds...)
	}
	cmds = append(cmds,
		fetchAlertsCmd(a.client),
		fetchOverviewCmd(a.client),
		pollTickCmd(a.interval),
	)
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKeys(msg)

	case alertsMsg:
		a.snap.Loading = false
		a.snap.PollCount++
		a.snap.LastPollAt = msg.at
		if msg.err != nil {
			a.offline = true
			a.snap.LastError = msg.err.Error()
		} else {
			a.offline = false
			a.snap.LastError = ""
			a.snap.Alerts = msg.alerts
			a.lastFetch = msg.at
		}
		a.clampAlertCursor()
		return a, nil

	case overviewMsg:
		if msg.err == nil {
			a.summary = msg.summary
			a.recent = msg.recent
		}
		return a, nil

	case chatReplyMsg:
		return a.updateChatReply(msg)

	case pollTickMsg:
		return a, tea.Batch(
			fetchAlertsCmd(a.client),
			fetchOverviewCmd(a.client),
			pollTickCmd(a.interval),
		)

	case setupDoneMsg:
		return a.finishSetup(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) updateKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// First-run setup intercepts everything else.
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	// Chat input swallows most keys while focused.
	if a.activeTab == tabChat && a.chat.input.Focused() {
		return a.updateChatKeys(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		return a, tea.Batch(fetchAlertsCmd(a.client), fetchOverviewCmd(a.client))
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
			if idx == tabChat {
				return a, a.chat.input.Focus()
			}
			return a, nil
		}
	}

	switch a.activeTab {
	case tabAlerts:
		return a.updateAlertKeys(key)
	case tabChat:
		if key == "enter" || key == "i" {
			return a, a.chat.input.Focus()
		}
	case tabSettings:
		return a.updateSettingsKeys(key)
	}
	return a, nil
}

func (a App) updateAlertKeys(key string) (tea.Model, tea.Cmd) {
	visible := a.tracker.Visible(a.snap.Alerts)
	switch key {
	case "j", "down":
		if a.alertCursor < len(visible)-1 {
			a.alertCursor++
		}
	case "k", "up":
		if a.alertCursor > 0 {
			a.alertCursor--
		}
	case "d":
		if a.alertCursor < len(visible) {
			a.tracker.Dismiss(visible[a.alertCursor].ID)
			a.clampAlertCursor()
		}
	}
	return a, nil
}

func (a *App) clampAlertCursor() {
	n := len(a.tracker.Visible(a.snap.Alerts))
	if a.alertCursor >= n {
		a.alertCursor = n - 1
	}
	if a.alertCursor < 0 {
		a.alertCursor = 0
	}
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return fmt.Sprintf("\n  Terminal too narrow (%d cols; need %d).\n", a.width, minTerminalWidth)
	}

	if a.needSetup && a.setupForm != nil {
		return a.viewSetup()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	header := components.RenderTabBar(a.activeTab, a.width)

	age := ""
	if !a.lastFetch.IsZero() {
		age = humanAge(time.Since(a.lastFetch))
	}
	statusBar := components.RenderStatusBar(a.width, age, a.offline)

	contentH := a.height - lipgloss.Height(header) - lipgloss.Height(statusBar)
	if contentH < minContentHeight {
		contentH = minContentHeight
	}

	cw := a.contentWidth()
	var content string
	switch a.activeTab {
	case tabOverview:
		content = a.renderOverviewTab(cw)
	case tabAlerts:
		content = a.renderAlertsTab(cw)
	case tabChat:
		content = a.renderChatTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Padding(1, 3)

	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	bindings := []struct{ key, desc string }{
		{"o a c x", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Move alert / settings cursor"},
		{"d", "Dismiss selected alert (this session)"},
		{"r", "Refresh now"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		fmt.Fprintf(&b, "  %s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-10s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center,
		cardStyle.Render(b.String()))
}

// ─── Commands ───────────────────────────────────────────────────

func pollTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return pollTickMsg(t)
	})
}

func fetchAlertsCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		list, err := client.FetchAlerts(context.Background())
		return alertsMsg{alerts: list, err: err, at: time.Now()}
	}
}

func fetchOverviewCmd(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		summary, err := client.FetchSummary(ctx)
		if err != nil {
			return overviewMsg{err: err}
		}
		recent, err := client.FetchTransactions(ctx, 8)
		if err != nil {
			return overviewMsg{summary: summary, err: err}
		}
		return overviewMsg{summary: summary, recent: recent}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func humanAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	default:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	}
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}
