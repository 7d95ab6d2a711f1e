package plain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/client"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/session"
	"github.com/hivespace/hivechat/stream"
	"github.com/hivespace/hivechat/view"
)

func TestConsole_PrintsStreamDeltas(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut)

	c.AppendMessage(view.Node{ID: "p", Role: chat.RoleAssistant, Label: "Assistant", Pending: true})
	c.UpdateMessage("p", "Hel")
	c.UpdateMessage("p", "Hello, ")
	c.UpdateMessage("p", "Hello, world")
	c.EndReply()

	assert.Equal(t, "Assistant: Hello, world\n", out.String())
}

func TestConsole_SkipsEchoedInput(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, io.Discard)

	c.Echoed("hi there")
	c.AppendMessage(view.Node{ID: "u1", Role: chat.RoleUser, Label: "You", Body: "hi there"})
	assert.Empty(t, out.String())

	c.AppendMessage(view.Node{ID: "u2", Role: chat.RoleUser, Label: "You", Body: "hi there", Time: "Just now"})
	assert.Equal(t, "[Just now] You: hi there\n", out.String(), "only the first match is skipped")
}

func TestConsole_RemovedPlaceholder(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, io.Discard)

	c.AppendMessage(view.Node{ID: "p", Role: chat.RoleAssistant, Label: "Assistant", Pending: true})
	c.RemoveMessage("p")
	c.RemoveMessage("p")
	assert.Equal(t, "Assistant: (no reply)\n", out.String())

	out.Reset()
	c.AppendMessage(view.Node{ID: "q", Role: chat.RoleAssistant, Label: "Assistant", Pending: true})
	c.UpdateMessage("q", "partial")
	c.RemoveMessage("q")
	assert.Equal(t, "Assistant: partial [interrupted]\n", out.String())
}

func TestConsole_ReplacedBodyStartsNewLine(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, io.Discard)

	c.AppendMessage(view.Node{ID: "p", Role: chat.RoleAssistant, Label: "Assistant", Pending: true})
	c.UpdateMessage("p", "Hel")
	c.UpdateMessage("p", "Error: overloaded")
	c.EndReply()
	assert.Equal(t, "Assistant: Hel\nError: overloaded\n", out.String())
}

func TestConsole_NotifyAndSessions(t *testing.T) {
	var out, errOut bytes.Buffer
	c := NewConsole(&out, &errOut)

	c.Notify(view.LevelWarning, "Select or create a chat first")
	assert.Equal(t, "[warning] Select or create a chat first\n", errOut.String())

	c.ShowSessions([]chat.Session{{ID: "a", Title: "Alpha", MessageCount: 2}, {ID: "b", Title: "Beta"}}, "b")
	c.PrintSessions()
	assert.Equal(t, "   1. Alpha (2 msgs)\n*  2. Beta (0 msgs)\n", out.String())
}

// scripted feeds fixed lines and then io.EOF.
type scripted struct {
	lines   []string
	history []string
}

func (s *scripted) Prompt(string) (string, error) {
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scripted) AppendHistory(item string) { s.history = append(s.history, item) }

type chatServer struct {
	mu      sync.Mutex
	sent    []string
	cleared int
}

func (cs *chatServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	detail := client.SessionDetail{
		SessionInfo: client.SessionInfo{ID: "s1", Title: "Trip", UpdatedAt: "2025-06-15T12:00:00"},
		Messages:    []client.MessageInfo{{ID: "m0", Type: "ai", Text: "Welcome"}},
	}
	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/api/sessions":
		_ = json.NewEncoder(w).Encode([]client.SessionInfo{detail.SessionInfo})
	case r.Method == http.MethodGet && r.URL.Path == "/api/sessions/s1":
		_ = json.NewEncoder(w).Encode(detail)
	case r.Method == http.MethodDelete && r.URL.Path == "/api/sessions/s1/clear":
		cs.cleared++
		_ = json.NewEncoder(w).Encode(client.ClearResponse{Success: true})
	case r.Method == http.MethodGet && r.URL.Path == "/api/sessions/s1/export":
		_ = json.NewEncoder(w).Encode(client.ExportResponse{Success: true, Content: "You: hi\n", Filename: "trip.txt"})
	case r.Method == http.MethodPost && r.URL.Path == "/api/messages/send/stream":
		var req client.SendMessageRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		cs.sent = append(cs.sent, req.Message)
		for _, part := range []string{"Sure", ", here you go"} {
			fmt.Fprintf(w, "data: {\"type\":\"chunk\",\"content\":%q}\n\n", part)
		}
		fmt.Fprint(w, "data: {\"type\":\"complete\"}\n\n")
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newREPL(t *testing.T, lines ...string) (*REPL, *chatServer, *bytes.Buffer, string) {
	t.Helper()
	cs := &chatServer{}
	srv := httptest.NewServer(cs)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	console := NewConsole(&out, &out)
	api := client.New(srv.URL + "/api")
	r := &render.Renderer{Format: func(s string) string { return s }}
	ctl := session.NewController(api, console, console, console, r)
	ctl.ExportDir = t.TempDir()
	ctl.Submitter = stream.New(api, console, r, console, stream.Options{})

	return &REPL{Controller: ctl, Console: console, Prompt: &scripted{lines: lines}}, cs, &out, ctl.ExportDir
}

func TestREPL_SendsAndStreams(t *testing.T) {
	repl, cs, out, _ := newREPL(t, "  ", "plan a trip", "/quit", "never read")
	require.NoError(t, repl.Run(context.Background()))

	assert.Equal(t, []string{"plan a trip"}, cs.sent)
	text := out.String()
	assert.Contains(t, text, "Assistant: Welcome\n")
	assert.Contains(t, text, "Assistant: Sure, here you go\n")
	assert.NotContains(t, text, "You: plan a trip", "the prompt already showed the input")
	assert.Equal(t, []string{"plan a trip", "/quit"}, repl.Prompt.(*scripted).history)
}

func TestREPL_SlashEscape(t *testing.T) {
	repl, cs, _, _ := newREPL(t, "//etc is a directory")
	require.NoError(t, repl.Run(context.Background()))
	assert.Equal(t, []string{"/etc is a directory"}, cs.sent)
}

func TestREPL_ClearNeedsConfirmation(t *testing.T) {
	repl, cs, out, _ := newREPL(t, "/clear", "n", "/clear", "y")
	require.NoError(t, repl.Run(context.Background()))
	assert.Equal(t, 1, cs.cleared)
	assert.Contains(t, out.String(), "Cancelled.")
}

func TestREPL_ExportAndUnknown(t *testing.T) {
	repl, _, out, dir := newREPL(t, "/export", "/bogus", "/sessions", "/switch 7")
	require.NoError(t, repl.Run(context.Background()))

	data, err := os.ReadFile(filepath.Join(dir, "trip.txt"))
	require.NoError(t, err)
	assert.Equal(t, "You: hi\n", string(data))

	text := out.String()
	assert.Contains(t, text, "Unknown command /bogus")
	assert.Contains(t, text, "*  1. Trip")
	assert.True(t, strings.Contains(text, "no chat number 7"))
}
