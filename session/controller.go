// Package session drives the session list and the current conversation:
// loading, switching, creating, clearing and exporting sessions, and
// handing messages to the stream ingestor.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/client"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/stream"
	"github.com/hivespace/hivechat/view"
)

// ErrNoActiveSession is returned by operations that need a current session
// before one has been selected.
var ErrNoActiveSession = errors.New("no active session")

// API is the part of the chat API client the controller calls.
// *client.Client satisfies it.
type API interface {
	ListSessions(ctx context.Context) ([]client.SessionInfo, error)
	GetSession(ctx context.Context, id string) (*client.SessionDetail, error)
	CreateSession(ctx context.Context, req client.CreateSessionRequest) (*client.SessionDetail, error)
	ClearSession(ctx context.Context, id string) (*client.ClearResponse, error)
	ExportSession(ctx context.Context, id string) (*client.ExportResponse, error)
}

// Submitter sends one message. *stream.Ingestor satisfies it.
type Submitter interface {
	Submit(ctx context.Context, sessionID, text string) (stream.Result, error)
}

// Controller owns the application State and keeps the views in step with
// it.
type Controller struct {
	api      API
	state    *State
	view     view.View
	list     view.SessionList
	notifier view.Notifier
	renderer *render.Renderer

	// Submitter is set after construction because the ingestor's refresh
	// hook calls back into the controller.
	Submitter Submitter
	ExportDir string
	Log       logrus.FieldLogger
}

func NewController(api API, v view.View, list view.SessionList, n view.Notifier, r *render.Renderer) *Controller {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &Controller{
		api:      api,
		state:    &State{},
		view:     v,
		list:     list,
		notifier: n,
		renderer: r,
		Log:      l,
	}
}

func (c *Controller) State() *State { return c.state }

// Start loads the session list and opens the most recent session, creating
// one when the server has none.
func (c *Controller) Start(ctx context.Context) error {
	if err := c.Refresh(ctx); err != nil {
		c.notifier.Notify(view.LevelError, "Could not load sessions: "+err.Error())
		return err
	}
	sessions := c.state.Sessions()
	if len(sessions) == 0 {
		_, err := c.Create(ctx, "")
		return err
	}
	return c.Switch(ctx, sessions[0].ID)
}

// Refresh reloads the session list and republishes it. Overlapping calls
// are allowed; the last response to arrive wins. Failures are returned and
// logged but not shown to the user.
func (c *Controller) Refresh(ctx context.Context) error {
	infos, err := c.api.ListSessions(ctx)
	if err != nil {
		c.Log.WithError(err).Warn("session refresh failed")
		return fmt.Errorf("refresh sessions: %w", err)
	}
	sessions := make([]chat.Session, 0, len(infos))
	for _, info := range infos {
		sessions = append(sessions, info.ToSession())
	}
	c.state.SetSessions(sessions)
	c.publish()
	return nil
}

// RefreshHook returns Refresh bound to ctx, for the ingestor's
// post-submission hook.
func (c *Controller) RefreshHook(ctx context.Context) func() {
	return func() {
		_ = c.Refresh(ctx)
	}
}

func (c *Controller) publish() {
	if c.list != nil {
		c.list.ShowSessions(c.state.Sessions(), c.state.Current())
	}
}

// Switch makes id current and renders its full history. An in-flight
// stream for the previous session is left running.
func (c *Controller) Switch(ctx context.Context, id string) error {
	detail, err := c.api.GetSession(ctx, id)
	if err != nil {
		return c.fail("switch session", err)
	}
	s := detail.ToSession()
	c.state.SetCurrent(s.ID)

	c.view.Reset()
	if c.renderer.Zoom != nil {
		c.renderer.Zoom.Reset()
	}
	for _, m := range s.Messages {
		c.view.AppendMessage(c.renderer.Render(m))
	}
	c.view.ScrollToEnd()
	c.publish()

	c.Log.WithFields(logrus.Fields{"session": s.ID, "messages": len(s.Messages)}).Debug("switched session")
	return nil
}

// Create makes a new session and switches to it. A blank title becomes
// "New Chat N".
func (c *Controller) Create(ctx context.Context, title string) (chat.Session, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = fmt.Sprintf("New Chat %d", c.state.Len()+1)
	}
	detail, err := c.api.CreateSession(ctx, client.CreateSessionRequest{Title: title})
	if err != nil {
		return chat.Session{}, c.fail("create session", err)
	}
	s := detail.ToSession()
	if err := c.Refresh(ctx); err != nil {
		// The session exists; show it even if the list is stale.
		c.state.SetSessions(append(c.state.Sessions(), s))
	}
	if err := c.Switch(ctx, s.ID); err != nil {
		return s, err
	}
	return s, nil
}

// Clear empties the current session on the server and reloads it. The
// server replaces the history with a fresh greeting.
func (c *Controller) Clear(ctx context.Context) error {
	id, err := c.requireCurrent()
	if err != nil {
		return err
	}
	if _, err := c.api.ClearSession(ctx, id); err != nil {
		return c.fail("clear session", err)
	}
	if err := c.Switch(ctx, id); err != nil {
		return err
	}
	_ = c.Refresh(ctx)
	return nil
}

// Export downloads the current session's transcript into ExportDir and
// returns the written path. The server's filename and content are used
// verbatim; only directory parts of the filename are dropped.
func (c *Controller) Export(ctx context.Context) (string, error) {
	id, err := c.requireCurrent()
	if err != nil {
		return "", err
	}
	resp, err := c.api.ExportSession(ctx, id)
	if err != nil {
		return "", c.fail("export session", err)
	}

	title := id
	if s, ok := c.state.Session(id); ok && s.Title != "" {
		title = s.Title
	}
	name := ExportFilename(resp.Filename, title)

	dir := c.ExportDir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", c.fail("export session", err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(resp.Content), 0o644); err != nil {
		return "", c.fail("export session", err)
	}

	c.Log.WithFields(logrus.Fields{"session": id, "path": path}).Info("exported session")
	c.notifier.Notify(view.LevelInfo, "Exported to "+path)
	return path, nil
}

// ExportFilename picks the file name for an export. serverName wins when it
// names a file; otherwise the name is built from title.
func ExportFilename(serverName, title string) string {
	if serverName != "" {
		name := filepath.Base(filepath.Clean(strings.ReplaceAll(serverName, `\`, "/")))
		if name != "." && name != ".." && name != "/" {
			return name
		}
	}
	slug := strings.Join(strings.Fields(title), "-")
	slug = strings.NewReplacer("/", "-", `\`, "-").Replace(slug)
	if slug == "" || slug == "." || slug == ".." {
		slug = "chat"
	}
	return "hivespace-chat-" + slug + ".txt"
}

// Send hands text to the ingestor for the current session. Blank text is
// ignored silently; a missing session produces a warning notice.
func (c *Controller) Send(ctx context.Context, text string) (stream.Result, error) {
	if strings.TrimSpace(text) == "" {
		return stream.Result{State: stream.StateIdle}, nil
	}
	id, err := c.requireCurrent()
	if err != nil {
		return stream.Result{State: stream.StateIdle}, err
	}
	return c.Submitter.Submit(ctx, id, text)
}

// AutoRefresh refreshes the list every interval until ctx is done. Ticks
// are skipped while no sessions are known.
func (c *Controller) AutoRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.state.Len() == 0 {
				continue
			}
			_ = c.Refresh(ctx)
		}
	}
}

func (c *Controller) requireCurrent() (string, error) {
	id := c.state.Current()
	if id == "" {
		c.notifier.Notify(view.LevelWarning, "Select or create a chat first")
		return "", ErrNoActiveSession
	}
	return id, nil
}

func (c *Controller) fail(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	c.Log.WithError(err).WithField("op", op).Error("session operation failed")
	c.notifier.Notify(view.LevelError, fmt.Sprintf("Failed to %s: %v", op, err))
	return fmt.Errorf("%s: %w", op, err)
}
