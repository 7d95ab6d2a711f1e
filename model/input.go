package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/hivespace/hivechat/style"
)

// InputModel is the prompt line. Up and Down walk back through submitted
// lines; Tab completes slash command names.
type InputModel struct {
	ti         textinput.Model
	history    []string
	historyIdx int // len(history) when not navigating
	draft      string

	commands   []string
	tabIdx     int // -1 when not cycling
	tabMatches []string
}

func NewInput() InputModel {
	ti := textinput.New()
	ti.Placeholder = "Message HiveSpace, or / for commands (ctrl+k)"
	ti.CharLimit = 8192
	ti.Prompt = ""
	return InputModel{ti: ti, tabIdx: -1}
}

// SetCommands replaces the names used for Tab completion, e.g. "/export".
func (m *InputModel) SetCommands(cmds []string) {
	m.commands = cmds
}

func (m *InputModel) SetWidth(w int) {
	if w > 4 {
		m.ti.Width = w - 4
	}
}

func (m *InputModel) Focus() tea.Cmd { return m.ti.Focus() }

func (m *InputModel) Blur() { m.ti.Blur() }

func (m InputModel) Focused() bool { return m.ti.Focused() }

func (m InputModel) Value() string { return m.ti.Value() }

// SetValue replaces the text and moves the cursor to the end.
func (m *InputModel) SetValue(s string) {
	m.ti.SetValue(s)
	m.ti.CursorEnd()
	m.resetTab()
}

// Reset clears the field.
func (m *InputModel) Reset() {
	m.historyIdx = len(m.history)
	m.draft = ""
	m.ti.SetValue("")
	m.resetTab()
}

// Submit records text in history, skipping repeats, and clears the field.
func (m *InputModel) Submit(text string) {
	text = strings.TrimSpace(text)
	if text != "" && (len(m.history) == 0 || m.history[len(m.history)-1] != text) {
		m.history = append(m.history, text)
	}
	m.Reset()
}

func (m *InputModel) resetTab() {
	m.tabIdx = -1
	m.tabMatches = nil
}

func (m InputModel) Init() tea.Cmd {
	return nil
}

func (m InputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.Type {
		case tea.KeyUp:
			return m.navigateHistory(-1), nil
		case tea.KeyDown:
			return m.navigateHistory(+1), nil
		case tea.KeyTab:
			return m.cycleComplete(), nil
		default:
			m.resetTab()
		}
	}

	var cmd tea.Cmd
	m.ti, cmd = m.ti.Update(msg)
	return m, cmd
}

func (m InputModel) View() string {
	return style.PromptChar.Render("❯ ") + m.ti.View()
}

// navigateHistory moves through history by delta (-1 older, +1 newer).
// Leaving the newest entry restores the unsent draft.
func (m InputModel) navigateHistory(delta int) InputModel {
	if len(m.history) == 0 {
		return m
	}
	if m.historyIdx == len(m.history) && delta < 0 {
		m.draft = m.ti.Value()
	}

	next := m.historyIdx + delta
	if next < 0 {
		next = 0
	}
	if next > len(m.history) {
		next = len(m.history)
	}
	m.historyIdx = next

	if next == len(m.history) {
		m.ti.SetValue(m.draft)
	} else {
		m.ti.SetValue(m.history[next])
	}
	m.ti.CursorEnd()
	return m
}

// cycleComplete steps through commands matching the typed prefix. Only the
// command word is completed; anything after a space disables it.
func (m InputModel) cycleComplete() InputModel {
	current := m.ti.Value()
	if !strings.HasPrefix(current, "/") || (m.tabIdx == -1 && strings.Contains(current, " ")) {
		return m
	}

	if m.tabIdx == -1 {
		m.tabMatches = matchCommands(m.commands, current)
		if len(m.tabMatches) == 0 {
			return m
		}
		m.tabIdx = 0
	} else {
		m.tabIdx = (m.tabIdx + 1) % len(m.tabMatches)
	}

	value := m.tabMatches[m.tabIdx]
	if len(m.tabMatches) == 1 {
		value += " "
	}
	m.ti.SetValue(value)
	m.ti.CursorEnd()
	return m
}

func matchCommands(commands []string, prefix string) []string {
	var out []string
	for _, c := range commands {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}
