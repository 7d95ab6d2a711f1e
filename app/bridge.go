package app

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/config"
	"github.com/hivespace/hivechat/msg"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/stream"
	"github.com/hivespace/hivechat/view"
)

// Sender delivers messages into a running program. *tea.Program
// implements it.
type Sender interface {
	Send(tea.Msg)
}

// Bridge turns calls from the session controller and the stream ingestor
// into tea messages, so every view change is applied by Update on the UI
// goroutine in call order.
//
// Send blocks until Update receives the message. Bridge methods must
// therefore be called from tea.Cmd goroutines or other background work,
// never from Update itself.
type Bridge struct {
	mu sync.RWMutex
	p  Sender
}

var (
	_ view.View        = (*Bridge)(nil)
	_ view.SessionList = (*Bridge)(nil)
	_ view.Notifier    = (*Bridge)(nil)
)

func NewBridge() *Bridge {
	return &Bridge{}
}

// Attach sets the program to deliver to. Messages sent before Attach are
// dropped.
func (b *Bridge) Attach(p Sender) {
	b.mu.Lock()
	b.p = p
	b.mu.Unlock()
}

func (b *Bridge) send(m tea.Msg) {
	b.mu.RLock()
	p := b.p
	b.mu.RUnlock()
	if p != nil {
		p.Send(m)
	}
}

func (b *Bridge) AppendMessage(n view.Node) { b.send(msg.AppendMessage{Node: n}) }

func (b *Bridge) UpdateMessage(id, body string) { b.send(msg.UpdateMessage{ID: id, Body: body}) }

func (b *Bridge) RemoveMessage(id string) { b.send(msg.RemoveMessage{ID: id}) }

func (b *Bridge) ScrollToEnd() { b.send(msg.ScrollToEnd{}) }

func (b *Bridge) Reset() { b.send(msg.ResetMessages{}) }

func (b *Bridge) ShowSessions(sessions []chat.Session, activeID string) {
	b.send(msg.SessionsUpdated{Sessions: sessions, ActiveID: activeID})
}

func (b *Bridge) Notify(level view.Level, text string) {
	b.send(msg.Notify{Level: level, Text: text})
}

// StreamState matches stream.Options.OnState.
func (b *Bridge) StreamState(sessionID string, s stream.State) {
	b.send(msg.StreamState{SessionID: sessionID, State: s})
}

// OpenZoom is the zoom registry's opener.
func (b *Bridge) OpenZoom(ref render.ImageRef) {
	b.send(msg.ZoomOpen{Ref: ref})
}

// ConfigReloaded is the config watcher's callback.
func (b *Bridge) ConfigReloaded(cfg config.Config) {
	b.send(msg.ConfigReloaded{Config: cfg})
}
