// Package render turns chat messages into view nodes.
//
// Assistant text is semi-trusted and goes through the rich-text formatter.
// User text is never formatted: it is inserted literally, with terminal
// escape sequences and control characters removed.
package render

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/markdown"
	"github.com/hivespace/hivechat/timefmt"
	"github.com/hivespace/hivechat/view"
)

const (
	DefaultUserLabel      = "You"
	DefaultAssistantLabel = "Assistant"
)

// Renderer builds view nodes. The zero value formats with markdown.Render,
// labels with the wall clock and registers no zoom affordances.
type Renderer struct {
	Format         func(string) string
	Clock          timefmt.Formatter
	Zoom           *ZoomRegistry
	UserLabel      string
	AssistantLabel string
}

func New(zoom *ZoomRegistry) *Renderer {
	return &Renderer{Zoom: zoom}
}

// Render builds the node for m. An assistant message with no text renders
// as a pending placeholder.
func (r *Renderer) Render(m chat.Message) view.Node {
	n := view.Node{
		ID:        m.ID,
		Role:      m.Role,
		Time:      r.Clock.Label(m.Timestamp),
		Timestamp: m.Timestamp,
	}
	if m.Role == chat.RoleUser {
		n.Label = or(r.UserLabel, DefaultUserLabel)
		n.Body = Escape(m.Text)
		return n
	}

	n.Label = or(m.Sender, or(r.AssistantLabel, DefaultAssistantLabel))
	if m.Text == "" {
		n.Pending = true
		return n
	}
	n.Body = r.FormatAssistant(m.Text)
	r.AttachImages(m.ID, m.Text)
	return n
}

// FormatAssistant runs the formatter over the whole text.
func (r *Renderer) FormatAssistant(text string) string {
	if r.Format != nil {
		return r.Format(text)
	}
	return markdown.Render(text)
}

// AttachImages (re)registers zoom affordances for the images in source, the
// unformatted markdown of message id. It replaces any earlier registration
// for id, so calling it after every re-render is safe. It returns the number
// of images attached.
func (r *Renderer) AttachImages(id, source string) int {
	if r.Zoom == nil {
		return 0
	}
	imgs := markdown.Images(source)
	r.Zoom.Attach(id, imgs)
	return len(imgs)
}

// ZoomGeneration is the zoom registry generation new messages render into.
func (r *Renderer) ZoomGeneration() uint64 {
	if r.Zoom == nil {
		return 0
	}
	return r.Zoom.Generation()
}

// AttachImagesIn is AttachImages for a message appended at zoom generation
// gen. It attaches nothing once the view has been reset since.
func (r *Renderer) AttachImagesIn(gen uint64, id, source string) int {
	if r.Zoom == nil {
		return 0
	}
	imgs := markdown.Images(source)
	if !r.Zoom.AttachIn(gen, id, imgs) {
		return 0
	}
	return len(imgs)
}

// ErrorBody renders server-provided error text. It is shown verbatim.
func (r *Renderer) ErrorBody(text string) string {
	return Escape(text)
}

// Escape strips ANSI sequences and control characters other than newline
// and tab, so the text displays literally.
func Escape(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r < 0x20 || r == 0x7f || (r >= 0x80 && r < 0xa0):
			return -1
		default:
			return r
		}
	}, s)
}

func or(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
