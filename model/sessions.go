package model

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/style"
	"github.com/hivespace/hivechat/timefmt"
)

// SessionChoice is emitted when the user picks a session in the sidebar.
type SessionChoice struct {
	ID string
}

// SessionsBlur is emitted when the sidebar gives focus back to the input.
type SessionsBlur struct{}

// SessionsModel is the session sidebar: a vertical list with the active
// session marked and arrow-key navigation while focused.
type SessionsModel struct {
	items    []chat.Session
	activeID string
	cursor   int
	offset   int
	focused  bool
	width    int
	height   int
	clock    timefmt.Formatter
}

func NewSessions() SessionsModel {
	return SessionsModel{width: 28, height: 20}
}

// SetSessions replaces the list. The cursor stays on the same session when
// it is still listed, otherwise it moves to the active one.
func (m *SessionsModel) SetSessions(items []chat.Session, activeID string) {
	var cursorID string
	if m.cursor < len(m.items) {
		cursorID = m.items[m.cursor].ID
	}
	m.items = items
	m.activeID = activeID

	m.cursor = 0
	if i := chat.Find(items, cursorID); i >= 0 && m.focused {
		m.cursor = i
	} else if i := chat.Find(items, activeID); i >= 0 {
		m.cursor = i
	}
	m.clampOffset()
}

func (m *SessionsModel) SetClock(c timefmt.Formatter) {
	m.clock = c
}

func (m SessionsModel) Sessions() []chat.Session { return m.items }

func (m SessionsModel) ActiveID() string { return m.activeID }

// Active returns the active session summary, if listed.
func (m SessionsModel) Active() (chat.Session, bool) {
	if i := chat.Find(m.items, m.activeID); i >= 0 {
		return m.items[i], true
	}
	return chat.Session{}, false
}

func (m *SessionsModel) Focus() {
	m.focused = true
	if i := chat.Find(m.items, m.activeID); i >= 0 {
		m.cursor = i
		m.clampOffset()
	}
}

func (m *SessionsModel) Blur() { m.focused = false }

func (m SessionsModel) Focused() bool { return m.focused }

// SetSize sets the outer size of the sidebar box.
func (m *SessionsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.clampOffset()
}

// pageSize is the number of items that fit; each takes two lines.
func (m SessionsModel) pageSize() int {
	n := (m.height - 5) / 2
	if n < 1 {
		n = 1
	}
	return n
}

func (m *SessionsModel) clampOffset() {
	page := m.pageSize()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+page {
		m.offset = m.cursor - page + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// Init satisfies tea.Model.
func (m SessionsModel) Init() tea.Cmd {
	return nil
}

// Update handles keyboard input while the sidebar is focused.
func (m SessionsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.focused {
		return m, nil
	}
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.Type {
	case tea.KeyUp:
		if len(m.items) == 0 {
			return m, nil
		}
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.items) - 1
		}
		m.clampOffset()

	case tea.KeyDown:
		if len(m.items) == 0 {
			return m, nil
		}
		if m.cursor < len(m.items)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
		m.clampOffset()

	case tea.KeyEnter:
		if len(m.items) == 0 {
			return m, nil
		}
		id := m.items[m.cursor].ID
		m.focused = false
		return m, func() tea.Msg { return SessionChoice{ID: id} }

	case tea.KeyEsc, tea.KeyTab:
		m.focused = false
		return m, func() tea.Msg { return SessionsBlur{} }
	}
	return m, nil
}

// View renders the sidebar box.
func (m SessionsModel) View() string {
	inner := m.width - 4
	if inner < 10 {
		inner = 10
	}

	var sb strings.Builder
	sb.WriteString(style.SidebarTitle.Render(fmt.Sprintf("Chats (%d)", len(m.items))))
	sb.WriteString("\n")
	if m.focused {
		sb.WriteString(style.Hint.Render(runewidth.Truncate("↑↓ move · enter open · esc back", inner, "…")))
	} else {
		sb.WriteString(style.Hint.Render(runewidth.Truncate("ctrl+s to browse", inner, "…")))
	}
	sb.WriteString("\n")

	if len(m.items) == 0 {
		sb.WriteString(style.Faint.Render("No chats yet"))
	}

	end := m.offset + m.pageSize()
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := m.offset; i < end; i++ {
		sb.WriteString("\n")
		sb.WriteString(m.renderItem(m.items[i], i == m.cursor && m.focused, inner))
	}
	if end < len(m.items) {
		sb.WriteString("\n" + style.Faint.Render("↓ more"))
	}

	box := style.SidebarBox
	if m.focused {
		box = box.BorderForeground(style.Primary)
	}
	return box.
		Width(m.width - 2).
		Height(m.height - 2).
		Render(sb.String())
}

func (m SessionsModel) renderItem(s chat.Session, isCursor bool, width int) string {
	marker := "  "
	titleStyle := style.SidebarItem
	switch {
	case isCursor:
		marker = style.SidebarCursor.Render("> ")
		titleStyle = style.SidebarCursor
	case s.ID == m.activeID:
		marker = style.SidebarActive.Render("● ")
		titleStyle = style.SidebarActive
	}

	title := s.Title
	if title == "" {
		title = "Untitled"
	}
	title = runewidth.Truncate(title, width-2, "…")

	return marker + titleStyle.Render(title) + "\n" +
		"  " + style.SidebarMeta.Render(runewidth.Truncate(m.meta(s), width-2, "…"))
}

// meta is the activity line under a title, e.g. "5 min ago · 4 msgs".
func (m SessionsModel) meta(s chat.Session) string {
	when := s.LastActivity
	if !s.UpdatedAt.IsZero() {
		when = m.clock.Label(s.UpdatedAt)
	}
	var parts []string
	if when != "" {
		parts = append(parts, when)
	}
	switch s.MessageCount {
	case 0:
	case 1:
		parts = append(parts, "1 msg")
	default:
		parts = append(parts, fmt.Sprintf("%d msgs", s.MessageCount))
	}
	return strings.Join(parts, " · ")
}

// Width of the sidebar including its border.
func (m SessionsModel) Width() int {
	return lipgloss.Width(m.View())
}
