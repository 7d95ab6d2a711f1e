// Package msg defines the tea.Msg types dispatched within the chat TUI.
// It imports only leaf packages (chat, view, stream, render, config) so the
// app and model packages can both depend on it.
package msg

import (
	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/config"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/stream"
	"github.com/hivespace/hivechat/view"
)

// -- Message view (one per view.View method) --

type AppendMessage struct {
	Node view.Node
}

type UpdateMessage struct {
	ID   string
	Body string
}

type RemoveMessage struct {
	ID string
}

type ScrollToEnd struct{}

type ResetMessages struct{}

// -- Session list --

// SessionsUpdated carries a fresh, sorted session list.
type SessionsUpdated struct {
	Sessions []chat.Session
	ActiveID string
}

// -- Notifications --

type Notify struct {
	Level view.Level
	Text  string
}

// -- Submissions --

// StreamState reports each transition of the in-flight submission.
type StreamState struct {
	SessionID string
	State     stream.State
}

// SubmitDone ends a submission. Tokens counts the reply text.
type SubmitDone struct {
	Result stream.Result
	Err    error
	Tokens int
	Exact  bool
}

// -- Session operations --

// OpKind names a session controller operation run from the UI.
type OpKind string

const (
	OpStart   OpKind = "start"
	OpRefresh OpKind = "refresh"
	OpSwitch  OpKind = "switch"
	OpCreate  OpKind = "create"
	OpClear   OpKind = "clear"
	OpExport  OpKind = "export"
)

// OpResult from a session controller operation. Detail carries the
// operation's output, e.g. the export path.
type OpResult struct {
	Op     OpKind
	Detail string
	Err    error
}

// -- Dialogs --

// ZoomOpen asks the UI to show an image in the zoom dialog.
type ZoomOpen struct {
	Ref render.ImageRef
}

// Confirmed is sent when a confirm dialog is accepted.
type Confirmed struct {
	Action string
}

// -- Config --

// ConfigReloaded from the config file watcher.
type ConfigReloaded struct {
	Config config.Config
}

// -- UI events --

// TickMsg for periodic timer updates.
type TickMsg struct{}

// Copied reports a clipboard write.
type Copied struct {
	What string
	Err  error
}
