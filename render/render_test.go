package render

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/timefmt"
)

var fixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestRenderer(zoom *ZoomRegistry) *Renderer {
	return &Renderer{
		Format: func(s string) string { return "<fmt>" + s + "</fmt>" },
		Clock:  timefmt.Formatter{Now: func() time.Time { return fixedNow }},
		Zoom:   zoom,
	}
}

func TestRender_UserTextIsLiteral(t *testing.T) {
	r := newTestRenderer(nil)
	n := r.Render(chat.Message{
		ID:        "u1",
		Role:      chat.RoleUser,
		Text:      "**not bold** \x1b[31mred\x1b[0m\x07 <b>tag</b>\nline2",
		Timestamp: fixedNow,
	})

	assert.Equal(t, "You", n.Label)
	assert.Equal(t, "Just now", n.Time)
	assert.Equal(t, "**not bold** red <b>tag</b>\nline2", n.Body)
	assert.NotContains(t, n.Body, "<fmt>")
}

func TestRender_AssistantIsFormatted(t *testing.T) {
	r := newTestRenderer(nil)
	n := r.Render(chat.Message{ID: "a1", Role: chat.RoleAssistant, Text: "**hi**", Sender: "HiveSpace AI", Timestamp: fixedNow.Add(-3 * time.Hour)})

	assert.Equal(t, "<fmt>**hi**</fmt>", n.Body)
	assert.Equal(t, "HiveSpace AI", n.Label)
	assert.Equal(t, "3 hours ago", n.Time)
	assert.False(t, n.Pending)
}

func TestRender_EmptyAssistantIsPending(t *testing.T) {
	r := newTestRenderer(nil)
	n := r.Render(chat.Message{ID: "p1", Role: chat.RoleAssistant})
	assert.True(t, n.Pending)
	assert.Equal(t, "", n.Body)
	assert.Equal(t, DefaultAssistantLabel, n.Label)
}

func TestRender_AttachesImages(t *testing.T) {
	zoom := NewZoomRegistry(nil)
	r := newTestRenderer(zoom)
	r.Render(chat.Message{ID: "a1", Role: chat.RoleAssistant, Text: "look ![cat](https://img/cat.png)"})

	imgs := zoom.Images("a1")
	require.Len(t, imgs, 1)
	assert.Equal(t, "https://img/cat.png", imgs[0].URL)
}

func TestRender_UserImagesAreNotAttached(t *testing.T) {
	zoom := NewZoomRegistry(nil)
	r := newTestRenderer(zoom)
	r.Render(chat.Message{ID: "u1", Role: chat.RoleUser, Text: "![x](https://img/x.png)"})
	assert.Empty(t, zoom.All())
}

func TestErrorBody_IsEscaped(t *testing.T) {
	r := newTestRenderer(nil)
	assert.Equal(t, "failed: **oops**", r.ErrorBody("failed: \x1b[1m**oops**"))
}

func TestEscape_KeepsTabsAndUnicode(t *testing.T) {
	assert.Equal(t, "a\tb\nXin chào ✓", Escape("a\tb\r\nXin chào ✓"))
}
