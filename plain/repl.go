package plain

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/session"
)

// Prompter reads one line of input. *liner.State implements it.
type Prompter interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// REPL is the read-send loop of the console.
type REPL struct {
	Controller *session.Controller
	Console    *Console
	Prompt     Prompter
	Log        logrus.FieldLogger
	// Interrupt, when set, is installed around each submission so Ctrl+C
	// stops the reply instead of the process.
	Interrupt bool
}

const help = `Commands:
  /new [title]   start a new chat
  /sessions      list chats
  /switch <n|id> open a chat
  /clear         clear the current chat
  /export        save the current chat as a text file
  /help          show this help
  /quit          exit`

// Run loops until the input ends, the user quits or ctx is done.
func (r *REPL) Run(ctx context.Context) error {
	if err := r.Controller.Start(ctx); err != nil {
		r.Console.Println("Type /new to retry once the server is reachable.")
	}
	r.Console.Println("Type /help for commands.")

	for ctx.Err() == nil {
		line, err := r.Prompt.Prompt("> ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		r.Prompt.AppendHistory(line)

		if strings.HasPrefix(line, "/") && !strings.HasPrefix(line, "//") {
			if quit := r.command(ctx, line); quit {
				return nil
			}
			continue
		}
		r.send(ctx, strings.TrimPrefix(line, "/"))
	}
	return ctx.Err()
}

func (r *REPL) send(ctx context.Context, text string) {
	if r.Interrupt {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt)
		defer stop()
	}
	r.Console.Echoed(render.Escape(text))
	res, err := r.Controller.Send(ctx, text)
	r.Console.EndReply()
	if err != nil && r.Log != nil {
		r.Log.WithError(err).WithField("state", res.State.String()).Debug("submission ended")
	}
}

// command runs a slash command and reports whether to quit.
func (r *REPL) command(ctx context.Context, line string) bool {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/exit":
		return true
	case "/help":
		r.Console.Println(help)
	case "/new":
		_, _ = r.Controller.Create(ctx, arg)
	case "/sessions":
		_ = r.Controller.Refresh(ctx)
		r.Console.PrintSessions()
	case "/switch":
		sessions, _ := r.Console.Sessions()
		id, err := session.Resolve(sessions, arg)
		if err != nil {
			r.Console.Println(err.Error())
			return false
		}
		_ = r.Controller.Switch(ctx, id)
	case "/clear":
		answer, err := r.Prompt.Prompt("Clear every message in this chat? [y/N] ")
		if err != nil || !strings.EqualFold(strings.TrimSpace(answer), "y") {
			r.Console.Println("Cancelled.")
			return false
		}
		_ = r.Controller.Clear(ctx)
	case "/export":
		_, _ = r.Controller.Export(ctx)
	default:
		r.Console.Println("Unknown command " + name + ", try /help")
	}
	return false
}
