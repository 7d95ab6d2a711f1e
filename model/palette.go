package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hivespace/hivechat/style"
)

// PaletteExecute is sent when the user picks a command. Commands that take
// an argument are put back into the input instead of running.
type PaletteExecute struct {
	Name     string
	NeedsArg bool
}

// PaletteDismiss is sent when the palette closes without a choice.
type PaletteDismiss struct{}

// PaletteItem is one command in the palette.
type PaletteItem struct {
	Name        string // "/export"
	Args        string // "[title]", "<n|id>"
	Description string
}

// NeedsArg reports whether the command requires an argument.
func (p PaletteItem) NeedsArg() bool {
	return strings.HasPrefix(p.Args, "<")
}

func (p PaletteItem) matches(query string) bool {
	return strings.Contains(strings.ToLower(p.Name+" "+p.Description), query)
}

var (
	paletteUp     = key.NewBinding(key.WithKeys("up", "ctrl+p"))
	paletteDown   = key.NewBinding(key.WithKeys("down", "ctrl+n"))
	paletteSelect = key.NewBinding(key.WithKeys("enter"))
	paletteClose  = key.NewBinding(key.WithKeys("esc", "ctrl+c", "ctrl+k"))
)

// PaletteModel is a filterable command overlay.
type PaletteModel struct {
	active   bool
	filter   textinput.Model
	items    []PaletteItem
	filtered []PaletteItem
	cursor   int
	width    int
	height   int
}

func NewPalette() PaletteModel {
	ti := textinput.New()
	ti.Placeholder = "Filter commands…"
	ti.Prompt = "/ "
	ti.PromptStyle = style.PromptChar
	return PaletteModel{filter: ti}
}

const paletteRows = 10

// Open shows the palette over a width x height area.
func (m *PaletteModel) Open(items []PaletteItem, width, height int) tea.Cmd {
	m.active = true
	m.items = items
	m.filtered = items
	m.cursor = 0
	m.width = width
	m.height = height
	m.filter.SetValue("")
	m.filter.Width = width/2 - 6
	return m.filter.Focus()
}

func (m *PaletteModel) close() {
	m.active = false
	m.filter.Blur()
}

func (m PaletteModel) IsActive() bool { return m.active }

// Filtered returns the commands matching the current filter.
func (m PaletteModel) Filtered() []PaletteItem { return m.filtered }

func (m PaletteModel) Update(msg tea.Msg) (PaletteModel, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch {
		case key.Matches(keyMsg, paletteClose):
			m.close()
			return m, func() tea.Msg { return PaletteDismiss{} }

		case key.Matches(keyMsg, paletteSelect):
			if m.cursor >= len(m.filtered) {
				return m, nil
			}
			item := m.filtered[m.cursor]
			m.close()
			return m, func() tea.Msg {
				return PaletteExecute{Name: item.Name, NeedsArg: item.NeedsArg()}
			}

		case key.Matches(keyMsg, paletteUp):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil

		case key.Matches(keyMsg, paletteDown):
			if m.cursor < len(m.filtered)-1 {
				m.cursor++
			}
			return m, nil
		}
	}

	prev := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() != prev {
		m.applyFilter()
	}
	return m, cmd
}

func (m *PaletteModel) applyFilter() {
	query := strings.ToLower(strings.TrimPrefix(m.filter.Value(), "/"))
	m.cursor = 0
	if query == "" {
		m.filtered = m.items
		return
	}
	m.filtered = nil
	for _, item := range m.items {
		if item.matches(query) {
			m.filtered = append(m.filtered, item)
		}
	}
}

// window returns the visible slice bounds, keeping the cursor in view.
func (m PaletteModel) window() (int, int) {
	n := len(m.filtered)
	if n <= paletteRows {
		return 0, n
	}
	start := m.cursor - paletteRows/2
	if start < 0 {
		start = 0
	}
	if start+paletteRows > n {
		start = n - paletteRows
	}
	return start, start + paletteRows
}

// View renders the palette centered over the area given to Open.
func (m PaletteModel) View() string {
	if !m.active {
		return ""
	}

	boxWidth := m.width / 2
	if boxWidth < 50 {
		boxWidth = 50
	}
	if boxWidth > m.width-4 {
		boxWidth = m.width - 4
	}

	var sb strings.Builder
	sb.WriteString(style.DialogTitle.Render("Commands"))
	sb.WriteByte('\n')
	sb.WriteString(m.filter.View())
	sb.WriteByte('\n')
	sb.WriteString(lipgloss.NewStyle().Foreground(style.Border).Render(strings.Repeat("─", max(boxWidth-6, 1))))

	if len(m.filtered) == 0 {
		sb.WriteString("\n" + style.Faint.Render("  No matching commands"))
	}

	name := lipgloss.NewStyle().Foreground(style.Secondary)
	start, end := m.window()
	for i := start; i < end; i++ {
		item := m.filtered[i]
		label := item.Name
		if item.Args != "" {
			label += " " + item.Args
		}
		sb.WriteByte('\n')
		if i == m.cursor {
			sb.WriteString(style.SidebarCursor.Render("> ") + name.Bold(true).Render(label))
		} else {
			sb.WriteString("  " + name.Render(label))
		}
		sb.WriteString(style.Faint.Render("  " + item.Description))
	}
	if end < len(m.filtered) {
		sb.WriteString("\n" + style.Faint.Render("  … more, type to filter"))
	}

	box := style.DialogBox.Width(boxWidth).Render(sb.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
