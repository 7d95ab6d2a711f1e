package markdown

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
)

const defaultWrap = 100

var (
	mu       sync.RWMutex
	renderer *glamour.TermRenderer
	wrap     = defaultWrap
	theme    = ""
)

func init() {
	renderer = newRenderer(theme, wrap)
}

// newRenderer returns nil when glamour cannot initialise; callers fall back
// to raw text.
func newRenderer(styleName string, width int) *glamour.TermRenderer {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch styleName {
	case "dark", "light", "notty":
		opts = append(opts, glamour.WithStandardStyle(styleName))
	default:
		opts = append(opts, glamour.WithAutoStyle())
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil
	}
	return r
}

// Configure swaps the shared renderer for one using the given glamour style
// ("dark", "light", "notty", or "" for auto) and wrap width.
func Configure(styleName string, width int) {
	if width <= 0 {
		width = defaultWrap
	}
	r := newRenderer(styleName, width)
	mu.Lock()
	renderer, theme, wrap = r, styleName, width
	mu.Unlock()
}

// Render converts markdown text to styled ANSI output.
// Falls back to raw text if the renderer is unavailable.
func Render(md string) string {
	mu.RLock()
	r := renderer
	mu.RUnlock()
	if r == nil || strings.TrimSpace(md) == "" {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	// glamour adds surrounding newlines; trim for inline display.
	return strings.Trim(out, "\n")
}

// RenderWidth creates a width-constrained renderer and renders.
func RenderWidth(md string, width int) string {
	if strings.TrimSpace(md) == "" {
		return md
	}
	mu.RLock()
	styleName := theme
	mu.RUnlock()
	r := newRenderer(styleName, width)
	if r == nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
