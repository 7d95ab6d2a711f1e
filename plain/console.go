// Package plain is the line-mode console used when stdout is not a
// terminal or --plain is given. Replies are printed as they stream, one
// delta at a time, with no cursor movement.
package plain

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/view"
)

// Console writes view calls to a line-oriented stream. It implements
// view.View, view.SessionList and view.Notifier.
type Console struct {
	mu  sync.Mutex
	out io.Writer
	err io.Writer

	// printed holds what has been written for each open reply, so updates
	// only print the new suffix.
	printed  map[string]string
	open     string
	echoed   string
	sessions []chat.Session
	activeID string
}

var (
	_ view.View        = (*Console)(nil)
	_ view.SessionList = (*Console)(nil)
	_ view.Notifier    = (*Console)(nil)
)

func NewConsole(out, errOut io.Writer) *Console {
	return &Console{out: out, err: errOut, printed: make(map[string]string)}
}

// Echoed tells the console the line editor already showed text, so the
// matching user message is not printed twice.
func (c *Console) Echoed(text string) {
	c.mu.Lock()
	c.echoed = text
	c.mu.Unlock()
}

func (c *Console) AppendMessage(n view.Node) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeReplyLocked()

	if n.Role == chat.RoleUser {
		if c.echoed != "" && n.Body == c.echoed {
			c.echoed = ""
			return
		}
		fmt.Fprintf(c.out, "%s%s: %s\n", stamp(n.Time), n.Label, n.Body)
		return
	}

	fmt.Fprintf(c.out, "%s%s: ", stamp(n.Time), n.Label)
	if n.Pending {
		c.open = n.ID
		c.printed[n.ID] = ""
		return
	}
	fmt.Fprintln(c.out, n.Body)
}

// UpdateMessage prints the part of body not yet shown. A body that is not
// an extension of what was printed (an error replacing a partial reply) is
// printed on a fresh line.
func (c *Console) UpdateMessage(id, body string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev, ok := c.printed[id]
	if !ok {
		return
	}
	if strings.HasPrefix(body, prev) {
		fmt.Fprint(c.out, body[len(prev):])
	} else {
		fmt.Fprintf(c.out, "\n%s", body)
	}
	c.printed[id] = body
	c.open = id
}

func (c *Console) RemoveMessage(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.printed[id]; !ok {
		return
	}
	if c.printed[id] == "" {
		fmt.Fprintln(c.out, "(no reply)")
	} else {
		fmt.Fprintln(c.out, " [interrupted]")
	}
	delete(c.printed, id)
	if c.open == id {
		c.open = ""
	}
}

func (c *Console) ScrollToEnd() {}

func (c *Console) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeReplyLocked()
	c.printed = make(map[string]string)
	fmt.Fprintln(c.out, strings.Repeat("─", 40))
}

// EndReply finishes the line of an open reply.
func (c *Console) EndReply() {
	c.mu.Lock()
	c.closeReplyLocked()
	c.mu.Unlock()
}

func (c *Console) closeReplyLocked() {
	if c.open == "" {
		return
	}
	fmt.Fprintln(c.out)
	delete(c.printed, c.open)
	c.open = ""
}

func (c *Console) ShowSessions(sessions []chat.Session, activeID string) {
	c.mu.Lock()
	c.sessions = sessions
	c.activeID = activeID
	c.mu.Unlock()
}

// Sessions returns the last published list.
func (c *Console) Sessions() ([]chat.Session, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sessions, c.activeID
}

// PrintSessions lists the sessions numbered for /switch.
func (c *Console) PrintSessions() {
	sessions, active := c.Sessions()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(sessions) == 0 {
		fmt.Fprintln(c.out, "No chats yet.")
		return
	}
	for i, s := range sessions {
		marker := " "
		if s.ID == active {
			marker = "*"
		}
		fmt.Fprintf(c.out, "%s %2d. %s (%d msgs)\n", marker, i+1, s.Title, s.MessageCount)
	}
}

func (c *Console) Notify(level view.Level, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeReplyLocked()
	fmt.Fprintf(c.err, "[%s] %s\n", level, text)
}

// Println writes a line of console output.
func (c *Console) Println(a ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, a...)
}

func stamp(t string) string {
	if t == "" {
		return ""
	}
	return "[" + t + "] "
}
