// Package timefmt turns absolute timestamps into the short relative labels
// shown next to messages and sessions.
package timefmt

import (
	"fmt"
	"time"
)

// DateLayout is used once a timestamp is a day or more old.
const DateLayout = "1/2/2006"

// Formatter produces labels relative to Now. A nil Now means time.Now.
type Formatter struct {
	Now func() time.Time
}

// Label formats t relative to the formatter's clock.
func (f Formatter) Label(t time.Time) string {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}
	return Relative(t, now())
}

// Relative formats t relative to now:
//
//	< 1 minute  Just now
//	< 1 hour    12 min ago
//	< 1 day     1 hour ago / 5 hours ago
//	otherwise   3/14/2025
func Relative(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "Just now"
	case d < time.Hour:
		return fmt.Sprintf("%d min ago", int(d/time.Minute))
	case d < 24*time.Hour:
		h := int(d / time.Hour)
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		return t.In(now.Location()).Format(DateLayout)
	}
}
