package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hivespace/hivechat/stream"
	"github.com/hivespace/hivechat/style"
)

// StatusModel renders the bottom status line:
//
//	⠋ streaming · Trip planning · ≈312 tokens · stream
//
// The spinner only runs while a submission is active.
type StatusModel struct {
	spin      spinner.Model
	state     stream.State
	title     string
	tokens    int
	exact     bool
	streaming bool
	hint      string
}

func NewStatus() StatusModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = style.SpinnerStyle
	return StatusModel{spin: s, streaming: true}
}

// SetState records the submission state and reports whether the spinner
// needs a tick to start.
func (m *StatusModel) SetState(s stream.State) bool {
	wasActive := m.state.Active()
	m.state = s
	return s.Active() && !wasActive
}

func (m StatusModel) State() stream.State { return m.state }

func (m *StatusModel) SetTitle(title string) { m.title = title }

// SetTokens sets the token count of the last reply. Inexact counts are
// prefixed with ≈.
func (m *StatusModel) SetTokens(n int, exact bool) {
	m.tokens = n
	m.exact = exact
}

func (m *StatusModel) SetStreaming(on bool) { m.streaming = on }

// SetHint sets the right-hand key hint.
func (m *StatusModel) SetHint(h string) { m.hint = h }

// Frame returns the current spinner frame, shared with pending placeholders.
func (m StatusModel) Frame() string {
	return m.spin.View()
}

// Tick starts the spinner.
func (m StatusModel) Tick() tea.Cmd {
	return m.spin.Tick
}

func (m StatusModel) Init() tea.Cmd {
	return nil
}

// Update advances the spinner while a submission is active. Ticks arriving
// after it finished are dropped, which stops the spinner.
func (m StatusModel) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := message.(spinner.TickMsg); ok && !m.state.Active() {
		return m, nil
	}
	var cmd tea.Cmd
	m.spin, cmd = m.spin.Update(message)
	return m, cmd
}

func (m StatusModel) View() string {
	var parts []string
	if m.state.Active() {
		parts = append(parts, m.spin.View()+" "+style.StatusActive.Render(m.state.String()))
	}
	if m.title != "" {
		parts = append(parts, m.title)
	}
	if m.tokens > 0 {
		prefix := ""
		if !m.exact {
			prefix = "≈"
		}
		parts = append(parts, fmt.Sprintf("%s%s tokens", prefix, formatTokens(m.tokens)))
	}
	if m.streaming {
		parts = append(parts, "stream")
	} else {
		parts = append(parts, "single")
	}
	line := style.StatusBar.Render(strings.Join(parts, " · "))
	if m.hint != "" {
		line += style.Hint.Render("  " + m.hint)
	}
	return line
}

func formatTokens(n int) string {
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000)
	default:
		return fmt.Sprintf("%d", n)
	}
}
