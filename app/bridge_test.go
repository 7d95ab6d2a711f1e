package app

import (
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/msg"
	"github.com/hivespace/hivechat/stream"
	"github.com/hivespace/hivechat/view"
)

type recorder struct {
	mu   sync.Mutex
	msgs []tea.Msg
}

func (r *recorder) Send(m tea.Msg) {
	r.mu.Lock()
	r.msgs = append(r.msgs, m)
	r.mu.Unlock()
}

func TestBridge_DropsUntilAttached(t *testing.T) {
	b := NewBridge()
	b.ScrollToEnd()

	r := &recorder{}
	b.Attach(r)
	b.ScrollToEnd()
	assert.Equal(t, []tea.Msg{msg.ScrollToEnd{}}, r.msgs)
}

func TestBridge_TranslatesCallsInOrder(t *testing.T) {
	r := &recorder{}
	b := NewBridge()
	b.Attach(r)

	node := view.Node{ID: "a", Role: chat.RoleAssistant, Pending: true}
	sessions := []chat.Session{{ID: "s1"}}

	b.AppendMessage(node)
	b.UpdateMessage("a", "hi")
	b.RemoveMessage("a")
	b.Reset()
	b.ShowSessions(sessions, "s1")
	b.Notify(view.LevelError, "boom")
	b.StreamState("s1", stream.StateStreaming)

	assert.Equal(t, []tea.Msg{
		msg.AppendMessage{Node: node},
		msg.UpdateMessage{ID: "a", Body: "hi"},
		msg.RemoveMessage{ID: "a"},
		msg.ResetMessages{},
		msg.SessionsUpdated{Sessions: sessions, ActiveID: "s1"},
		msg.Notify{Level: view.LevelError, Text: "boom"},
		msg.StreamState{SessionID: "s1", State: stream.StateStreaming},
	}, r.msgs)
}
