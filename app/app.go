package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"

	"github.com/hivespace/hivechat/config"
	"github.com/hivespace/hivechat/markdown"
	"github.com/hivespace/hivechat/model"
	"github.com/hivespace/hivechat/msg"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/session"
	"github.com/hivespace/hivechat/stream"
	"github.com/hivespace/hivechat/style"
	"github.com/hivespace/hivechat/tokens"
	"github.com/hivespace/hivechat/view"
)

const (
	sidebarWidth    = 30
	minSidebarWidth = 80 // below this terminal width the sidebar is hidden
	relabelEvery    = 30 // ticks between time label refreshes
	actionClear     = "clear"
)

// Deps are the services the UI drives. Controller and Ingestor must write
// to the same Bridge the program is attached to.
type Deps struct {
	Controller *session.Controller
	Ingestor   *stream.Ingestor
	Zoom       *render.ZoomRegistry
	Tokens     *tokens.Counter
	Config     config.Config
	Version    string
	Server     string
	Log        logrus.FieldLogger
	// Copy writes to the system clipboard; clipboard.WriteAll when nil.
	Copy func(string) error
}

type Model struct {
	header   model.HeaderModel
	chat     model.ChatModel
	sessions model.SessionsModel
	input    model.InputModel
	status   model.StatusModel
	toasts   model.ToastsModel
	dialog   model.DialogModel
	palette  model.PaletteModel

	deps        Deps
	ctx         context.Context
	keys        KeyMap
	state       State
	inflight    int
	ticks       int
	width       int
	height      int
	showSidebar bool
	confirmQuit bool
}

func New(ctx context.Context, d Deps) Model {
	if d.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		d.Log = l
	}
	if d.Copy == nil {
		d.Copy = clipboard.WriteAll
	}

	c := model.NewChat(80, 20)
	c.SetZoom(d.Zoom)
	c.SetWordWrap(d.Config.UI.WordWrap)

	in := model.NewInput()
	in.SetCommands(commandNames())
	in.Focus()

	st := model.NewStatus()
	st.SetStreaming(d.Ingestor == nil || d.Ingestor.Streaming())
	st.SetHint("ctrl+k commands · f1 help")

	return Model{
		header:      model.NewHeader(d.Version, d.Server),
		chat:        c,
		sessions:    model.NewSessions(),
		input:       in,
		status:      st,
		toasts:      model.NewToasts(),
		dialog:      model.NewDialog(),
		palette:     model.NewPalette(),
		deps:        d,
		ctx:         ctx,
		keys:        DefaultKeyMap(),
		state:       StateLoading,
		width:       80,
		height:      24,
		showSidebar: d.Config.UI.ShowSidebar,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.input.Focus(),
		m.runOp(msg.OpStart, func(ctx context.Context) (string, error) {
			return "", m.deps.Controller.Start(ctx)
		}),
		m.autoRefresh(),
		tickCmd(),
		tea.WindowSize(),
	)
}

func (m Model) Update(rawMsg tea.Msg) (tea.Model, tea.Cmd) {
	switch v := rawMsg.(type) {
	case tea.WindowSizeMsg:
		m.width = v.Width
		m.height = v.Height
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(v)

	case tea.MouseMsg:
		updated, cmd := m.chat.Update(v)
		m.chat = updated.(model.ChatModel)
		return m, cmd

	// -- view bridge --
	case msg.AppendMessage:
		m.chat.Append(v.Node)
		return m, nil
	case msg.UpdateMessage:
		m.chat.SetBody(v.ID, v.Body)
		return m, nil
	case msg.RemoveMessage:
		m.chat.Remove(v.ID)
		return m, nil
	case msg.ScrollToEnd:
		m.chat.ScrollToBottom()
		return m, nil
	case msg.ResetMessages:
		m.chat.Reset()
		return m, nil
	case msg.SessionsUpdated:
		m.sessions.SetSessions(v.Sessions, v.ActiveID)
		title := ""
		if s, ok := m.sessions.Active(); ok {
			title = s.Title
		}
		m.header.SetTitle(title)
		m.status.SetTitle(title)
		return m, nil
	case msg.Notify:
		return m.notify(v.Level, v.Text), nil

	// -- submissions --
	case msg.StreamState:
		return m.handleStreamState(v)
	case msg.SubmitDone:
		return m.handleSubmitDone(v)
	case spinner.TickMsg:
		updated, cmd := m.status.Update(v)
		m.status = updated.(model.StatusModel)
		m.chat.SetFrame(m.status.Frame())
		return m, cmd

	// -- session operations --
	case msg.OpResult:
		return m.handleOp(v)
	case model.SessionChoice:
		return m, tea.Batch(m.input.Focus(), m.switchTo(v.ID))
	case model.SessionsBlur:
		return m, m.input.Focus()

	// -- overlays --
	case model.PaletteExecute:
		if v.NeedsArg {
			m.input.SetValue(v.Name + " ")
			return m, m.input.Focus()
		}
		return m.runCommand(v.Name)
	case model.PaletteDismiss, model.DialogClosed:
		return m, m.input.Focus()
	case msg.ZoomOpen:
		m.dialog.OpenZoom(v.Ref)
		return m, nil
	case msg.Confirmed:
		if v.Action == actionClear {
			return m, m.runOp(msg.OpClear, func(ctx context.Context) (string, error) {
				return "", m.deps.Controller.Clear(ctx)
			})
		}
		return m, nil
	case model.CopyRequest:
		return m, m.copyText(v.What, v.Text)
	case msg.Copied:
		if v.Err != nil {
			return m.notify(view.LevelWarning, "Copy failed: "+v.Err.Error()), nil
		}
		return m.notify(view.LevelInfo, "Copied "+v.What), nil

	// -- config --
	case msg.ConfigReloaded:
		return m.applyConfig(v.Config), nil

	case msg.TickMsg:
		m.ticks++
		had := m.toasts.HasToasts()
		m.toasts.Tick()
		if had != m.toasts.HasToasts() {
			m.layout()
		}
		if m.ticks%relabelEvery == 0 {
			m.chat.Rerender()
		}
		return m, tickCmd()
	}

	updated, cmd := m.input.Update(rawMsg)
	m.input = updated.(model.InputModel)
	return m, cmd
}

func (m Model) View() string {
	if m.dialog.IsActive() {
		return m.dialog.View()
	}
	if m.palette.IsActive() {
		return m.palette.View()
	}

	body := m.chat.View()
	if m.sidebarVisible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sessions.View(), " ", body)
	}

	sections := []string{m.header.View(m.width), body}
	if m.toasts.HasToasts() {
		sections = append(sections, m.toasts.View(m.width))
	}
	if m.confirmQuit {
		sections = append(sections, style.Hint.Render("  Press Ctrl+C again to quit, or any key to cancel."))
	} else {
		sections = append(sections, m.status.View())
	}
	sections = append(sections, m.input.View())
	return strings.Join(sections, "\n")
}

// -- keys --

func (m Model) handleKey(k tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.confirmQuit {
		if key.Matches(k, m.keys.Cancel) {
			return m, tea.Quit
		}
		m.confirmQuit = false
		return m, nil
	}
	if m.dialog.IsActive() {
		var cmd tea.Cmd
		m.dialog, cmd = m.dialog.Update(k)
		return m, cmd
	}
	if m.palette.IsActive() {
		var cmd tea.Cmd
		m.palette, cmd = m.palette.Update(k)
		return m, cmd
	}
	if m.sessions.Focused() {
		updated, cmd := m.sessions.Update(k)
		m.sessions = updated.(model.SessionsModel)
		return m, cmd
	}

	switch {
	case key.Matches(k, m.keys.Cancel):
		if m.state == StateProcessing {
			m.deps.Ingestor.Cancel()
			return m, nil
		}
		if m.input.Value() == "" {
			m.confirmQuit = true
			return m, nil
		}
		m.input.Reset()
		return m, nil

	case key.Matches(k, m.keys.Escape):
		if m.state == StateProcessing {
			m.deps.Ingestor.Cancel()
			return m, nil
		}
		m.input.Reset()
		return m, nil

	case key.Matches(k, m.keys.QuitEOF):
		if m.input.Value() == "" {
			return m, tea.Quit
		}

	case key.Matches(k, m.keys.Submit):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.Submit(text)
		if isCommand(text) {
			return m.runCommand(text)
		}
		return m.submit(strings.TrimPrefix(text, "/"))

	case key.Matches(k, m.keys.Palette):
		m.input.Blur()
		return m, m.palette.Open(paletteItems(), m.width, m.height)

	case key.Matches(k, m.keys.FocusSessions):
		return m.focusSessions(), nil

	case key.Matches(k, m.keys.ToggleSidebar):
		m.showSidebar = !m.showSidebar
		m.layout()
		return m, nil

	case key.Matches(k, m.keys.NewChat):
		return m, m.create("")

	case key.Matches(k, m.keys.CopyReply):
		return m.copyReply()

	case key.Matches(k, m.keys.Help):
		m.dialog.OpenHelp(m.helpText())
		return m, nil

	case key.Matches(k, m.keys.ScrollTop):
		m.chat.ScrollToTop()
		return m, nil

	case key.Matches(k, m.keys.ScrollBottom):
		m.chat.ScrollToBottom()
		return m, nil

	case key.Matches(k, m.keys.PageUp), key.Matches(k, m.keys.PageDown):
		updated, cmd := m.chat.Update(k)
		m.chat = updated.(model.ChatModel)
		return m, cmd
	}

	updated, cmd := m.input.Update(k)
	m.input = updated.(model.InputModel)
	return m, cmd
}

// -- commands --

func (m Model) runCommand(text string) (tea.Model, tea.Cmd) {
	c, arg, err := parseCommand(text)
	if err != nil {
		return m.notify(view.LevelWarning, fmt.Sprintf("%v, try /help", err)), nil
	}

	switch c.Name {
	case "/new":
		return m, m.create(arg)
	case "/sessions":
		return m.focusSessions(), nil
	case "/switch":
		id, err := session.Resolve(m.sessions.Sessions(), arg)
		if err != nil {
			return m.notify(view.LevelWarning, err.Error()), nil
		}
		return m, m.switchTo(id)
	case "/refresh":
		return m, m.runOp(msg.OpRefresh, func(ctx context.Context) (string, error) {
			return "", m.deps.Controller.Refresh(ctx)
		})
	case "/clear":
		s, ok := m.sessions.Active()
		if !ok {
			return m.notify(view.LevelWarning, "Select or create a chat first"), nil
		}
		m.dialog.OpenConfirm("Clear chat",
			fmt.Sprintf("Delete every message in %q? This cannot be undone.", s.Title), actionClear)
		return m, nil
	case "/export":
		return m, m.runOp(msg.OpExport, m.deps.Controller.Export)
	case "/copy":
		return m.copyReply()
	case "/zoom":
		return m.zoom(arg)
	case "/theme":
		if arg == "" {
			return m.notify(view.LevelInfo, "Themes: "+strings.Join(style.ThemeNames, ", ")), nil
		}
		cfg := m.deps.Config
		cfg.UI.Theme = arg
		if _, ok := style.Themes[arg]; !ok && arg != "auto" {
			return m.notify(view.LevelWarning, "Unknown theme "+arg), nil
		}
		return m.applyConfig(cfg), nil
	case "/help":
		m.dialog.OpenHelp(m.helpText())
		return m, nil
	case "/quit":
		return m, tea.Quit
	}
	return m, nil
}

// zoom opens image n (1-based, as numbered in the chat) or the newest.
func (m Model) zoom(arg string) (tea.Model, tea.Cmd) {
	if m.deps.Zoom == nil {
		return m, nil
	}
	all := m.deps.Zoom.All()
	if len(all) == 0 {
		return m.notify(view.LevelInfo, "No images in this chat"), nil
	}
	n := len(all)
	if arg != "" {
		v, err := strconv.Atoi(arg)
		if err != nil || v < 1 || v > len(all) {
			return m.notify(view.LevelWarning, fmt.Sprintf("No image %s (have %d)", arg, len(all))), nil
		}
		n = v
	}
	ref := all[n-1]
	z := m.deps.Zoom
	return m, func() tea.Msg {
		z.Click(ref.MessageID, ref.Index)
		return nil
	}
}

func (m Model) copyReply() (tea.Model, tea.Cmd) {
	text, ok := m.chat.LastReply()
	if !ok {
		return m.notify(view.LevelInfo, "Nothing to copy yet"), nil
	}
	return m, m.copyText("last reply", text)
}

func (m Model) copyText(what, text string) tea.Cmd {
	write := m.deps.Copy
	return func() tea.Msg {
		return msg.Copied{What: what, Err: write(text)}
	}
}

func (m Model) focusSessions() Model {
	if !m.sidebarVisible() {
		m.showSidebar = true
		m.layout()
	}
	m.input.Blur()
	m.sessions.Focus()
	return m
}

// -- controller calls, always off the UI goroutine --

func (m Model) runOp(op msg.OpKind, fn func(context.Context) (string, error)) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		detail, err := fn(ctx)
		return msg.OpResult{Op: op, Detail: detail, Err: err}
	}
}

func (m Model) create(title string) tea.Cmd {
	return m.runOp(msg.OpCreate, func(ctx context.Context) (string, error) {
		s, err := m.deps.Controller.Create(ctx, title)
		return s.Title, err
	})
}

func (m Model) switchTo(id string) tea.Cmd {
	return m.runOp(msg.OpSwitch, func(ctx context.Context) (string, error) {
		return id, m.deps.Controller.Switch(ctx, id)
	})
}

func (m Model) submit(text string) (tea.Model, tea.Cmd) {
	m.inflight++
	m.state = StateProcessing
	ctx, ctl, counter := m.ctx, m.deps.Controller, m.deps.Tokens
	count := m.deps.Config.UI.ShowTokens
	return m, func() tea.Msg {
		res, err := ctl.Send(ctx, text)
		done := msg.SubmitDone{Result: res, Err: err}
		if count && res.Text != "" {
			if counter != nil {
				done.Tokens, done.Exact = counter.Count(res.Text)
			} else {
				done.Tokens = tokens.Estimate(res.Text)
			}
		}
		return done
	}
}

func (m Model) autoRefresh() tea.Cmd {
	ctl, ctx, every := m.deps.Controller, m.ctx, m.deps.Config.RefreshInterval()
	return func() tea.Msg {
		ctl.AutoRefresh(ctx, every)
		return nil
	}
}

func (m Model) handleStreamState(v msg.StreamState) (tea.Model, tea.Cmd) {
	// A cancelled predecessor reports its terminal state after its
	// successor has started; only the last submission may end the spinner.
	if v.State.Terminal() && m.inflight > 1 {
		return m, nil
	}
	if m.status.SetState(v.State) {
		return m, m.status.Tick()
	}
	return m, nil
}

func (m Model) handleSubmitDone(v msg.SubmitDone) (tea.Model, tea.Cmd) {
	if m.inflight > 0 {
		m.inflight--
	}
	if m.inflight == 0 {
		m.state = StateIdle
		m.status.SetState(v.Result.State)
	}
	if v.Tokens > 0 && m.deps.Config.UI.ShowTokens {
		m.status.SetTokens(v.Tokens, v.Exact)
	}
	if v.Err != nil && !errors.Is(v.Err, session.ErrNoActiveSession) {
		m.deps.Log.WithError(v.Err).WithField("state", v.Result.State.String()).Debug("submission ended")
	}
	return m, nil
}

func (m Model) handleOp(r msg.OpResult) (tea.Model, tea.Cmd) {
	if r.Op == msg.OpStart {
		m.state = StateIdle
		if m.inflight > 0 {
			m.state = StateProcessing
		}
	}
	if r.Err != nil {
		m.deps.Log.WithError(r.Err).WithField("op", string(r.Op)).Debug("operation failed")
		if r.Op == msg.OpRefresh {
			return m.notify(view.LevelWarning, "Could not refresh chats"), nil
		}
		return m, nil
	}
	switch r.Op {
	case msg.OpCreate:
		return m.notify(view.LevelInfo, "Created "+r.Detail), m.input.Focus()
	case msg.OpClear:
		return m.notify(view.LevelInfo, "Chat cleared"), nil
	case msg.OpSwitch:
		return m, m.input.Focus()
	}
	return m, nil
}

// notify shows errors as a modal alert and everything else as a toast.
func (m Model) notify(level view.Level, text string) Model {
	if level == view.LevelError {
		m.dialog.OpenAlert("Error", text)
		return m
	}
	m.toasts.Add(text, level)
	m.layout()
	return m
}

func (m Model) applyConfig(cfg config.Config) Model {
	if !style.SetTheme(cfg.UI.Theme) {
		m.deps.Log.WithField("theme", cfg.UI.Theme).Warn("unknown theme, keeping current")
	}
	markdown.Configure(style.Current().Markdown, m.chat.Width())
	m.chat.SetWordWrap(cfg.UI.WordWrap)
	if cfg.UI.ShowSidebar != m.deps.Config.UI.ShowSidebar {
		m.showSidebar = cfg.UI.ShowSidebar
	}
	if !cfg.UI.ShowTokens {
		m.status.SetTokens(0, false)
	}
	// The client and ingestor are built once at startup.
	if cfg.Server != m.deps.Config.Server {
		m.deps.Log.WithField("url", cfg.Server.URL).Info("server settings apply after restart")
		cfg.Server = m.deps.Config.Server
	}
	m.deps.Config = cfg
	m.layout()
	m.chat.Rerender()
	return m
}

// -- layout --

func (m Model) sidebarVisible() bool {
	return m.showSidebar && m.width >= minSidebarWidth
}

// layout sizes every component from the terminal size. Header, status and
// input take one line each; toasts take what they need.
func (m *Model) layout() {
	h := m.height - 3
	if m.toasts.HasToasts() {
		h -= lipgloss.Height(m.toasts.View(m.width))
	}
	if h < 3 {
		h = 3
	}
	w := m.width
	if m.sidebarVisible() {
		m.sessions.SetSize(sidebarWidth, h)
		w -= sidebarWidth + 1
	} else if m.sessions.Focused() {
		m.sessions.Blur()
	}
	m.chat.SetSize(w, h)
	m.input.SetWidth(m.width)
	m.dialog.SetSize(m.width, m.height)
}

func (m Model) helpText() string {
	var sb strings.Builder
	sb.WriteString("Commands\n")
	for _, c := range commands {
		name := c.Name
		if c.Args != "" {
			name += " " + c.Args
		}
		sb.WriteString(fmt.Sprintf("  %-16s %s\n", name, c.Description))
	}
	sb.WriteString("\nKeys\n")
	for _, b := range m.keys.bindings() {
		h := b.Help()
		sb.WriteString(fmt.Sprintf("  %-16s %s\n", h.Key, h.Desc))
	}
	sb.WriteString("\nStart a message with // to send a literal slash.")
	return sb.String()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg { return msg.TickMsg{} })
}
