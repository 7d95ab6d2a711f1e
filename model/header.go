package model

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/hivespace/hivechat/style"
)

// HeaderModel renders the one-line title bar:
//
//	HiveSpace Chat v0.4.0 · Trip planning · localhost:8000
type HeaderModel struct {
	version string
	title   string
	server  string
}

func NewHeader(version, server string) HeaderModel {
	return HeaderModel{version: version, server: server}
}

func (m *HeaderModel) SetTitle(title string) { m.title = title }

func (m *HeaderModel) SetServer(server string) { m.server = server }

// View renders the header, truncated to width.
func (m HeaderModel) View(width int) string {
	sep := lipgloss.NewStyle().Foreground(style.Muted).Render(" · ")
	line := style.HeaderTitle.Render(fmt.Sprintf("HiveSpace Chat %s", m.version))
	if m.title != "" {
		line += sep + lipgloss.NewStyle().Foreground(style.Primary).Render(m.title)
	}
	if m.server != "" {
		line += sep + style.HeaderDetail.Render(m.server)
	}
	if width > 0 && lipgloss.Width(line) > width {
		return runewidth.Truncate(
			fmt.Sprintf("HiveSpace Chat %s · %s", m.version, m.title), width, "…")
	}
	return line
}
