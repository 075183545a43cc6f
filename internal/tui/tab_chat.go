package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"spendlens/internal/api"
	"spendlens/internal/tui/theme"
)

const chatHistoryMax = 50

type chatLine struct {
	fromUser bool
	text     string
}

type chatState struct {
	input   textinput.Model
	history []chatLine
	waiting bool
}

func newChatState() chatState {
	ti := textinput.New()
	ti.Placeholder = `Try "Add 500 for food" or "budget summary"`
	ti.CharLimit = 500
	ti.Width = 60
	return chatState{input: ti}
}

func sendChatCmd(client *api.Client, message string) tea.Cmd {
	return func() tea.Msg {
		reply, err := client.SendChat(context.Background(), message)
		return chatReplyMsg{reply: reply, err: err}
	}
}

func (a App) updateChatKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.chat.input.Blur()
		return a, nil
	case "enter":
		text := strings.TrimSpace(a.chat.input.Value())
		if text == "" || a.chat.waiting {
			return a, nil
		}
		a.chat.history = appendChat(a.chat.history, chatLine{fromUser: true, text: text})
		a.chat.waiting = true
		a.chat.input.SetValue("")
		return a, sendChatCmd(a.client, text)
	}

	var cmd tea.Cmd
	a.chat.input, cmd = a.chat.input.Update(msg)
	return a, cmd
}

func (a App) updateChatReply(msg chatReplyMsg) (tea.Model, tea.Cmd) {
	a.chat.waiting = false
	if msg.err != nil {
		a.chat.history = appendChat(a.chat.history, chatLine{text: "Error: " + msg.err.Error()})
	} else {
		a.chat.history = appendChat(a.chat.history, chatLine{text: msg.reply})
	}
	// The assistant may have recorded or changed transactions; refresh.
	return a, tea.Batch(fetchAlertsCmd(a.client), fetchOverviewCmd(a.client))
}

func appendChat(history []chatLine, line chatLine) []chatLine {
	history = append(history, line)
	if len(history) > chatHistoryMax {
		history = history[len(history)-chatHistoryMax:]
	}
	return history
}

func (a App) renderChatTab(cw, contentH int) string {
	t := theme.Active

	youStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	botStyle := lipgloss.NewStyle().Foreground(t.Green).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim)

	var b strings.Builder
	if len(a.chat.history) == 0 {
		b.WriteString("\n  ")
		b.WriteString(dimStyle.Render("Ask about your spending, budgets, or forecasts."))
		b.WriteString("\n")
	}

	for _, line := range a.chat.history {
		b.WriteString("\n  ")
		if line.fromUser {
			b.WriteString(youStyle.Render("you ") + textStyle.Render(line.text))
		} else {
			b.WriteString(botStyle.Render("bot "))
			// Indent multi-line replies under the tag.
			b.WriteString(textStyle.Render(strings.ReplaceAll(line.text, "\n", "\n      ")))
		}
		b.WriteString("\n")
	}

	if a.chat.waiting {
		b.WriteString("\n  " + a.spinner.View() + dimStyle.Render(" thinking..."))
		b.WriteString("\n")
	}

	body := b.String()

	// Keep the newest exchange in view and pin the input at the bottom.
	inputLine := "\n  " + a.chat.input.View()
	maxBody := contentH - 3
	if maxBody < 1 {
		maxBody = 1
	}
	lines := strings.Split(body, "\n")
	if len(lines) > maxBody {
		lines = lines[len(lines)-maxBody:]
	}

	return strings.Join(lines, "\n") + inputLine
}
