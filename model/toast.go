package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/hivespace/hivechat/style"
	"github.com/hivespace/hivechat/view"
)

const (
	maxToasts = 3
	toastTTL  = 4 * time.Second
)

type toast struct {
	message string
	level   view.Level
	count   int
	expiry  time.Time
}

// ToastsModel manages a queue of auto-dismissing notifications.
type ToastsModel struct {
	queue []toast
	now   func() time.Time
}

func NewToasts() ToastsModel {
	return ToastsModel{now: time.Now}
}

// Add enqueues a toast. Repeating the newest toast bumps its count and
// expiry instead. The oldest are dropped past maxToasts.
func (m *ToastsModel) Add(message string, level view.Level) {
	expiry := m.clock()().Add(toastTTL)
	if n := len(m.queue); n > 0 && m.queue[n-1].message == message && m.queue[n-1].level == level {
		m.queue[n-1].count++
		m.queue[n-1].expiry = expiry
		return
	}
	m.queue = append(m.queue, toast{
		message: message,
		level:   level,
		count:   1,
		expiry:  expiry,
	})
	if len(m.queue) > maxToasts {
		m.queue = m.queue[len(m.queue)-maxToasts:]
	}
}

// Tick prunes expired toasts. Call on every msg.TickMsg.
func (m *ToastsModel) Tick() {
	now := m.clock()()
	alive := m.queue[:0]
	for _, t := range m.queue {
		if now.Before(t.expiry) {
			alive = append(alive, t)
		}
	}
	m.queue = alive
}

func (m ToastsModel) HasToasts() bool {
	return len(m.queue) > 0
}

func (m ToastsModel) clock() func() time.Time {
	if m.now == nil {
		return time.Now
	}
	return m.now
}

// View renders visible toasts as right-aligned colored lines.
func (m ToastsModel) View(termWidth int) string {
	if len(m.queue) == 0 {
		return ""
	}
	var lines []string
	for _, t := range m.queue {
		icon, color := toastIconColor(t.level)
		text := t.message
		if t.count > 1 {
			text = fmt.Sprintf("%s (×%d)", text, t.count)
		}
		if termWidth > 6 {
			text = runewidth.Truncate(text, termWidth-6, "…")
		}
		rendered := lipgloss.NewStyle().
			Foreground(color).
			Render(fmt.Sprintf(" %s %s ", icon, text))
		pad := termWidth - lipgloss.Width(rendered)
		if pad < 0 {
			pad = 0
		}
		lines = append(lines, strings.Repeat(" ", pad)+rendered)
	}
	return strings.Join(lines, "\n")
}

func toastIconColor(level view.Level) (string, lipgloss.TerminalColor) {
	switch level {
	case view.LevelWarning:
		return "⚠", style.Warning
	case view.LevelError:
		return "✘", style.Error
	default:
		return "✓", style.Success
	}
}
