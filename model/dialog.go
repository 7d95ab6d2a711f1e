package model

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/hivespace/hivechat/msg"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/style"
)

// DialogKind selects what a DialogModel shows.
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogZoom
	DialogConfirm
	DialogAlert
	DialogHelp
)

// DialogClosed is sent whenever a dialog closes.
type DialogClosed struct{}

// CopyRequest asks the app to put Text on the clipboard.
type CopyRequest struct {
	What string
	Text string
}

// DialogModel is a single modal overlay. Only one dialog is open at a time;
// opening another replaces it.
type DialogModel struct {
	kind   DialogKind
	title  string
	body   string
	action string
	image  render.ImageRef
	width  int
	height int
}

func NewDialog() DialogModel {
	return DialogModel{}
}

func (m DialogModel) IsActive() bool { return m.kind != DialogNone }

func (m DialogModel) Kind() DialogKind { return m.kind }

func (m *DialogModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// OpenZoom shows one image enlarged: its alt text, title and full URL.
func (m *DialogModel) OpenZoom(ref render.ImageRef) {
	m.reset(DialogZoom)
	m.image = ref
	m.title = "Image"
	if ref.Image.Alt != "" {
		m.title = ref.Image.Alt
	}
}

// OpenConfirm asks a yes/no question. Accepting sends msg.Confirmed{action}.
func (m *DialogModel) OpenConfirm(title, body, action string) {
	m.reset(DialogConfirm)
	m.title = title
	m.body = body
	m.action = action
}

// OpenAlert shows an error that must be dismissed.
func (m *DialogModel) OpenAlert(title, body string) {
	m.reset(DialogAlert)
	m.title = title
	m.body = body
}

// OpenHelp shows the key and command reference in body.
func (m *DialogModel) OpenHelp(body string) {
	m.reset(DialogHelp)
	m.title = "Help"
	m.body = body
}

func (m *DialogModel) reset(kind DialogKind) {
	*m = DialogModel{kind: kind, width: m.width, height: m.height}
}

func (m *DialogModel) Close() {
	m.reset(DialogNone)
}

func closed() tea.Msg { return DialogClosed{} }

// Update handles keys while the dialog is open.
func (m DialogModel) Update(message tea.Msg) (DialogModel, tea.Cmd) {
	keyMsg, ok := message.(tea.KeyMsg)
	if !ok || m.kind == DialogNone {
		return m, nil
	}
	k := keyMsg.String()

	switch m.kind {
	case DialogConfirm:
		switch k {
		case "y", "Y", "enter":
			action := m.action
			m.Close()
			return m, tea.Batch(closed, func() tea.Msg { return msg.Confirmed{Action: action} })
		case "n", "N", "esc", "q":
			m.Close()
			return m, closed
		}

	case DialogZoom:
		switch k {
		case "c":
			url := m.image.Image.URL
			m.Close()
			return m, tea.Batch(closed, func() tea.Msg { return CopyRequest{What: "image URL", Text: url} })
		case "esc", "q", "enter", " ":
			m.Close()
			return m, closed
		}

	default:
		switch k {
		case "esc", "q", "enter", " ":
			m.Close()
			return m, closed
		}
	}
	return m, nil
}

// View renders the dialog centered in the area set by SetSize.
func (m DialogModel) View() string {
	if m.kind == DialogNone {
		return ""
	}
	width := m.width * 2 / 3
	if width < 40 {
		width = 40
	}
	if m.width > 0 && width > m.width-2 {
		width = m.width - 2
	}
	inner := width - 6

	var sb strings.Builder
	sb.WriteString(style.DialogTitle.Render(runewidth.Truncate(m.title, inner, "…")))
	sb.WriteString("\n\n")

	var hint string
	switch m.kind {
	case DialogZoom:
		img := m.image.Image
		sb.WriteString(lipgloss.NewStyle().Width(inner).Render(img.URL))
		if img.Title != "" {
			sb.WriteString("\n" + style.Faint.Render(img.Title))
		}
		sb.WriteString("\n" + style.Faint.Render(fmt.Sprintf("image %d of message", m.image.Index+1)))
		hint = "c copy URL · esc close"
	case DialogConfirm:
		sb.WriteString(lipgloss.NewStyle().Width(inner).Render(m.body))
		hint = "y confirm · n cancel"
	default:
		sb.WriteString(lipgloss.NewStyle().Width(inner).Render(m.body))
		hint = "esc close"
	}
	sb.WriteString("\n\n" + style.Hint.Render(hint))

	box := style.DialogBox
	if m.kind == DialogAlert {
		box = style.AlertBox
	}
	rendered := box.Width(width).Render(sb.String())
	if m.width == 0 || m.height == 0 {
		return rendered
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, rendered)
}
