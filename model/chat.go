package model

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/style"
	"github.com/hivespace/hivechat/timefmt"
	"github.com/hivespace/hivechat/view"
)

// ChatModel is a scrollable viewport over the rendered message nodes.
// Nodes are addressed by ID so a streaming reply can be updated in place.
type ChatModel struct {
	vp       viewport.Model
	nodes    []view.Node
	width    int
	height   int
	wordWrap bool
	frame    string
	clock    timefmt.Formatter
	zoom     *render.ZoomRegistry
}

// NewChat constructs a ChatModel sized to width x height.
func NewChat(width, height int) ChatModel {
	vp := viewport.New(width, height)
	vp.SetContent("")
	return ChatModel{
		vp:       vp,
		width:    width,
		height:   height,
		wordWrap: true,
		frame:    "…",
	}
}

// SetZoom lets the view list each message's zoomable images.
func (m *ChatModel) SetZoom(z *render.ZoomRegistry) {
	m.zoom = z
}

func (m *ChatModel) SetClock(c timefmt.Formatter) {
	m.clock = c
}

func (m *ChatModel) SetWordWrap(on bool) {
	m.wordWrap = on
	m.refresh(false)
}

// SetFrame sets the spinner frame drawn in pending placeholders.
func (m *ChatModel) SetFrame(frame string) {
	m.frame = frame
	if m.hasPending() {
		m.refresh(false)
	}
}

// Append adds n at the end. A node with an existing ID replaces it.
func (m *ChatModel) Append(n view.Node) {
	if i := m.find(n.ID); i >= 0 {
		m.nodes[i] = n
	} else {
		m.nodes = append(m.nodes, n)
	}
	m.refresh(false)
}

// SetBody replaces the body of node id and reports whether it exists.
// Updates for removed nodes are dropped.
func (m *ChatModel) SetBody(id, body string) bool {
	i := m.find(id)
	if i < 0 {
		return false
	}
	m.nodes[i].Body = body
	m.nodes[i].Pending = false
	m.refresh(false)
	return true
}

func (m *ChatModel) Remove(id string) {
	if i := m.find(id); i >= 0 {
		m.nodes = append(m.nodes[:i], m.nodes[i+1:]...)
		m.refresh(false)
	}
}

// Reset drops every node.
func (m *ChatModel) Reset() {
	m.nodes = nil
	m.refresh(true)
}

func (m *ChatModel) ScrollToBottom() {
	m.vp.GotoBottom()
}

func (m *ChatModel) ScrollToTop() {
	m.vp.GotoTop()
}

// Rerender redraws every node, e.g. after a theme change or as time labels
// age.
func (m *ChatModel) Rerender() {
	m.refresh(false)
}

// Nodes returns the nodes in display order.
func (m ChatModel) Nodes() []view.Node {
	return append([]view.Node(nil), m.nodes...)
}

// LastReply returns the plain text of the newest non-empty assistant node.
func (m ChatModel) LastReply() (string, bool) {
	for i := len(m.nodes) - 1; i >= 0; i-- {
		n := m.nodes[i]
		if n.Role == chat.RoleAssistant && !n.Pending && n.Body != "" {
			return strings.TrimSpace(ansi.Strip(n.Body)), true
		}
	}
	return "", false
}

// SetSize resizes the underlying viewport.
func (m *ChatModel) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.vp.Width = width
	m.vp.Height = height
	m.refresh(false)
}

func (m ChatModel) Width() int { return m.width }

// Init satisfies tea.Model.
func (m ChatModel) Init() tea.Cmd {
	return nil
}

// Update forwards keyboard and mouse events to the viewport.
func (m ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

// View returns the rendered viewport content.
func (m ChatModel) View() string {
	return m.vp.View()
}

func (m ChatModel) find(id string) int {
	for i := range m.nodes {
		if m.nodes[i].ID == id {
			return i
		}
	}
	return -1
}

func (m ChatModel) hasPending() bool {
	for _, n := range m.nodes {
		if n.Pending {
			return true
		}
	}
	return false
}

// refresh re-renders all nodes. The view stays pinned to the bottom when it
// was there already; ScrollToBottom is explicit otherwise.
func (m *ChatModel) refresh(top bool) {
	follow := m.vp.AtBottom()
	m.vp.SetContent(m.renderAll())
	switch {
	case top:
		m.vp.GotoTop()
	case follow:
		m.vp.GotoBottom()
	}
}

func (m ChatModel) renderAll() string {
	if len(m.nodes) == 0 {
		return style.Faint.Render("  No messages yet. Type below to get started.")
	}

	images := m.imageIndex()
	var sb strings.Builder
	for i, n := range m.nodes {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(m.renderNode(n, images[n.ID]))
	}
	return sb.String()
}

type imageLine struct {
	number int
	label  string
}

// imageIndex numbers every zoomable image across the conversation, the same
// numbering /zoom uses.
func (m ChatModel) imageIndex() map[string][]imageLine {
	out := make(map[string][]imageLine)
	if m.zoom == nil {
		return out
	}
	for i, ref := range m.zoom.All() {
		label := ref.Image.Alt
		if label == "" {
			label = ref.Image.URL
		}
		out[ref.MessageID] = append(out[ref.MessageID], imageLine{number: i + 1, label: label})
	}
	return out
}

func (m ChatModel) renderNode(n view.Node, images []imageLine) string {
	when := n.Time
	if !n.Timestamp.IsZero() {
		when = m.clock.Label(n.Timestamp)
	}
	meta := ""
	if when != "" {
		meta = "  " + style.MsgMeta.Render(when)
	}

	if n.Role == chat.RoleUser {
		body := n.Body
		if m.wordWrap && m.width > 4 {
			body = lipgloss.NewStyle().Width(m.width - 3).Render(body)
		}
		return style.UserLabel.Render("❯ "+n.Label) + meta + "\n" + style.UserBody.Render(body)
	}

	head := style.AgentLabel.Render("◈ "+n.Label) + meta
	if n.Pending {
		return head + "\n" + style.Pending.Render("  "+m.frame+" thinking")
	}
	var sb strings.Builder
	sb.WriteString(head)
	sb.WriteString("\n")
	sb.WriteString(n.Body)
	for _, img := range images {
		sb.WriteString("\n")
		sb.WriteString(style.ImageHint.Render(fmt.Sprintf("  ⊕ [%d] %s", img.number, img.label)))
		sb.WriteString(style.Hint.Render(fmt.Sprintf("  /zoom %d", img.number)))
	}
	return sb.String()
}
