// Package view defines the display surface the controller and the stream
// ingestion loop write to. The TUI, the line-mode console and the in-memory
// fake used by tests all implement it.
package view

import (
	"time"

	"github.com/hivespace/hivechat/chat"
)

// Node is a rendered message ready for display.
type Node struct {
	ID    string
	Role  chat.Role
	Label string
	Time  string
	Body  string

	// Timestamp lets long-lived views refresh Time as it ages.
	Timestamp time.Time
	// Pending marks a placeholder that has not received any content yet.
	Pending bool
}

// View is the message list. Implementations must apply calls in the order
// they are made.
type View interface {
	AppendMessage(n Node)
	UpdateMessage(id, body string)
	RemoveMessage(id string)
	ScrollToEnd()
	Reset()
}

// SessionList displays the known sessions with one marked active.
type SessionList interface {
	ShowSessions(sessions []chat.Session, activeID string)
}

// Level classifies a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notifier surfaces user-visible alerts.
type Notifier interface {
	Notify(level Level, text string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(level Level, text string)

func (f NotifierFunc) Notify(level Level, text string) { f(level, text) }
