package model

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/markdown"
	"github.com/hivespace/hivechat/msg"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/stream"
	"github.com/hivespace/hivechat/timefmt"
	"github.com/hivespace/hivechat/view"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// collect runs cmd, expanding batches, and returns the messages produced.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	m := cmd()
	if batch, ok := m.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if m == nil {
		return nil
	}
	return []tea.Msg{m}
}

// -- chat --

func TestChat_AppendUpdateRemove(t *testing.T) {
	c := NewChat(80, 20)
	c.Append(view.Node{ID: "u1", Role: chat.RoleUser, Label: "You", Body: "hi"})
	c.Append(view.Node{ID: "p1", Role: chat.RoleAssistant, Label: "Assistant", Pending: true})

	out := ansi.Strip(c.View())
	assert.Contains(t, out, "thinking")

	assert.True(t, c.SetBody("p1", "hello there"))
	nodes := c.Nodes()
	require.Len(t, nodes, 2)
	assert.False(t, nodes[1].Pending)
	assert.Contains(t, ansi.Strip(c.View()), "hello there")

	assert.False(t, c.SetBody("gone", "x"), "updates for unknown nodes are dropped")

	c.Remove("p1")
	assert.Len(t, c.Nodes(), 1)
}

func TestChat_AppendSameIDReplaces(t *testing.T) {
	c := NewChat(80, 20)
	c.Append(view.Node{ID: "a", Role: chat.RoleAssistant, Body: "one"})
	c.Append(view.Node{ID: "a", Role: chat.RoleAssistant, Body: "two"})
	require.Len(t, c.Nodes(), 1)
	assert.Equal(t, "two", c.Nodes()[0].Body)
}

func TestChat_LastReply(t *testing.T) {
	c := NewChat(80, 20)
	_, ok := c.LastReply()
	assert.False(t, ok)

	c.Append(view.Node{ID: "a1", Role: chat.RoleAssistant, Body: "\x1b[1mfirst\x1b[0m"})
	c.Append(view.Node{ID: "u1", Role: chat.RoleUser, Body: "question"})
	c.Append(view.Node{ID: "p", Role: chat.RoleAssistant, Pending: true})

	text, ok := c.LastReply()
	require.True(t, ok)
	assert.Equal(t, "first", text, "pending placeholders are skipped and ANSI is stripped")
}

func TestChat_ImageHintsAreNumbered(t *testing.T) {
	zoom := render.NewZoomRegistry(nil)
	zoom.Attach("a1", []markdown.Image{{Alt: "cat", URL: "https://x/cat.png"}})
	zoom.Attach("a2", []markdown.Image{{URL: "https://x/dog.png"}})

	c := NewChat(80, 30)
	c.SetZoom(zoom)
	c.Append(view.Node{ID: "a1", Role: chat.RoleAssistant, Body: "a cat"})
	c.Append(view.Node{ID: "a2", Role: chat.RoleAssistant, Body: "a dog"})

	out := ansi.Strip(c.View())
	assert.Contains(t, out, "[1] cat")
	assert.Contains(t, out, "[2] https://x/dog.png")
	assert.Contains(t, out, "/zoom 2")
}

func TestChat_TimeLabelFollowsClock(t *testing.T) {
	c := NewChat(80, 20)
	c.SetClock(timefmt.Formatter{Now: func() time.Time { return fixedNow }})
	c.Append(view.Node{ID: "u", Role: chat.RoleUser, Body: "x", Time: "stale", Timestamp: fixedNow.Add(-5 * time.Minute)})

	out := ansi.Strip(c.View())
	assert.NotContains(t, out, "stale")
}

// -- sessions --

func sampleSessions() []chat.Session {
	return []chat.Session{
		{ID: "s1", Title: "Trip planning", MessageCount: 4, UpdatedAt: fixedNow.Add(-5 * time.Minute)},
		{ID: "s2", Title: "Recipes", MessageCount: 1, LastActivity: "yesterday"},
		{ID: "s3", Title: "Taxes"},
	}
}

func TestSessions_NavigationWraps(t *testing.T) {
	m := NewSessions()
	m.SetSessions(sampleSessions(), "s1")
	m.Focus()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyUp})
	m = updated.(SessionsModel)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(SessionsModel)

	assert.Equal(t, []tea.Msg{SessionChoice{ID: "s3"}}, collect(cmd))
	assert.False(t, m.Focused())
}

func TestSessions_EscBlurs(t *testing.T) {
	m := NewSessions()
	m.SetSessions(sampleSessions(), "s1")
	m.Focus()

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, updated.(SessionsModel).Focused())
	assert.Equal(t, []tea.Msg{SessionsBlur{}}, collect(cmd))
}

func TestSessions_IgnoresKeysWhenBlurred(t *testing.T) {
	m := NewSessions()
	m.SetSessions(sampleSessions(), "s1")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
}

func TestSessions_CursorSurvivesRefresh(t *testing.T) {
	m := NewSessions()
	m.SetSessions(sampleSessions(), "s1")
	m.Focus()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(SessionsModel)

	reordered := sampleSessions()
	reordered[0], reordered[1] = reordered[1], reordered[0]
	m.SetSessions(reordered, "s1")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	_ = updated
	assert.Equal(t, []tea.Msg{SessionChoice{ID: "s2"}}, collect(cmd))
}

func TestSessions_View(t *testing.T) {
	m := NewSessions()
	m.SetClock(timefmt.Formatter{Now: func() time.Time { return fixedNow }})
	m.SetSize(30, 20)
	m.SetSessions(sampleSessions(), "s1")

	out := ansi.Strip(m.View())
	assert.Contains(t, out, "Chats (3)")
	assert.Contains(t, out, "● Trip planning")
	assert.Contains(t, out, "4 msgs")
	assert.Contains(t, out, "yesterday · 1 msg")

	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "Trip planning", active.Title)
}

// -- input --

func TestInput_History(t *testing.T) {
	m := NewInput()
	m.Submit("hello")
	m.Submit("world")
	m.Submit("world")
	m.SetValue("draft")

	step := func(k tea.KeyType) string {
		updated, _ := m.Update(tea.KeyMsg{Type: k})
		m = updated.(InputModel)
		return m.Value()
	}
	assert.Equal(t, "world", step(tea.KeyUp))
	assert.Equal(t, "hello", step(tea.KeyUp))
	assert.Equal(t, "hello", step(tea.KeyUp), "history stops at the oldest entry")
	assert.Equal(t, "world", step(tea.KeyDown))
	assert.Equal(t, "draft", step(tea.KeyDown), "leaving history restores the draft")
}

func TestInput_TabCompletesCommands(t *testing.T) {
	m := NewInput()
	m.SetCommands([]string{"/new", "/export", "/exit"})

	m.SetValue("/ex")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(InputModel)
	assert.Equal(t, "/export", m.Value())
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(InputModel)
	assert.Equal(t, "/exit", m.Value())

	m.SetValue("/ne")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "/new ", updated.(InputModel).Value(), "a unique match gets a trailing space")

	m.SetValue("hello")
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	assert.Equal(t, "hello", updated.(InputModel).Value())
}

// -- toasts --

func TestToasts_ExpireAndCap(t *testing.T) {
	now := fixedNow
	m := NewToasts()
	m.now = func() time.Time { return now }

	for _, s := range []string{"a", "b", "c", "d"} {
		m.Add(s, view.LevelInfo)
	}
	out := ansi.Strip(m.View(40))
	assert.NotContains(t, out, " a ", "oldest toast is dropped past the cap")
	assert.Contains(t, out, "d")

	now = now.Add(toastTTL + time.Second)
	m.Tick()
	assert.False(t, m.HasToasts())
}

func TestToasts_RepeatsCollapse(t *testing.T) {
	m := NewToasts()
	m.Add("Could not refresh chats", view.LevelWarning)
	m.Add("Could not refresh chats", view.LevelWarning)
	m.Add("Could not refresh chats", view.LevelWarning)

	out := ansi.Strip(m.View(60))
	assert.Contains(t, out, "Could not refresh chats (×3)")
	assert.Equal(t, 1, strings.Count(out, "refresh"))
}

// -- status --

func TestStatus_StateAndTokens(t *testing.T) {
	m := NewStatus()
	assert.True(t, m.SetState(stream.StateSending), "becoming active starts the spinner")
	assert.False(t, m.SetState(stream.StateStreaming), "already active")

	m.SetTitle("Trip planning")
	m.SetTokens(1500, false)
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "streaming")
	assert.Contains(t, out, "Trip planning")
	assert.Contains(t, out, "≈1.5k tokens")

	m.SetState(stream.StateCompleted)
	m.SetTokens(12, true)
	m.SetStreaming(false)
	out = ansi.Strip(m.View())
	assert.NotContains(t, out, "completed")
	assert.Contains(t, out, "12 tokens")
	assert.Contains(t, out, "single")
}

// -- palette --

func TestPalette_FilterAndExecute(t *testing.T) {
	m := NewPalette()
	m.Open([]PaletteItem{
		{Name: "/new", Args: "[title]", Description: "Start a new chat"},
		{Name: "/switch", Args: "<n|id>", Description: "Open a chat"},
		{Name: "/export", Description: "Save the chat"},
	}, 100, 30)
	require.True(t, m.IsActive())

	for _, r := range "sw" {
		m, _ = m.Update(keyRunes(string(r)))
	}
	require.Len(t, m.Filtered(), 1)

	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.False(t, m.IsActive())
	assert.Equal(t, []tea.Msg{PaletteExecute{Name: "/switch", NeedsArg: true}}, collect(cmd))
}

func TestPalette_Dismiss(t *testing.T) {
	m := NewPalette()
	m.Open([]PaletteItem{{Name: "/help"}}, 100, 30)
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.IsActive())
	assert.Equal(t, []tea.Msg{PaletteDismiss{}}, collect(cmd))
}

// -- dialog --

func TestDialog_ConfirmAccept(t *testing.T) {
	m := NewDialog()
	m.OpenConfirm("Clear chat", "Sure?", "clear")

	m, cmd := m.Update(keyRunes("y"))
	assert.False(t, m.IsActive())
	assert.ElementsMatch(t, []tea.Msg{DialogClosed{}, msg.Confirmed{Action: "clear"}}, collect(cmd))
}

func TestDialog_ConfirmDecline(t *testing.T) {
	m := NewDialog()
	m.OpenConfirm("Clear chat", "Sure?", "clear")

	m, cmd := m.Update(keyRunes("n"))
	assert.False(t, m.IsActive())
	assert.Equal(t, []tea.Msg{DialogClosed{}}, collect(cmd))
}

func TestDialog_ZoomCopiesURL(t *testing.T) {
	m := NewDialog()
	m.SetSize(100, 30)
	m.OpenZoom(render.ImageRef{MessageID: "a1", Image: markdown.Image{Alt: "cat", URL: "https://x/cat.png"}})
	assert.Equal(t, DialogZoom, m.Kind())
	assert.Contains(t, ansi.Strip(m.View()), "https://x/cat.png")

	m, cmd := m.Update(keyRunes("c"))
	assert.False(t, m.IsActive())
	assert.Contains(t, collect(cmd), tea.Msg(CopyRequest{What: "image URL", Text: "https://x/cat.png"}))
}

func TestDialog_AlertIgnoresOtherKeys(t *testing.T) {
	m := NewDialog()
	m.OpenAlert("Error", "boom")
	m, cmd := m.Update(keyRunes("x"))
	assert.True(t, m.IsActive())
	assert.Nil(t, cmd)

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.IsActive())
}

func TestHeader(t *testing.T) {
	h := NewHeader("v1.2.0", "localhost:8000")
	h.SetTitle("Trip planning")
	out := ansi.Strip(h.View(120))
	assert.Equal(t, "HiveSpace Chat v1.2.0 · Trip planning · localhost:8000", out)
}
