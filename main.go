package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/hivespace/hivechat/app"
	"github.com/hivespace/hivechat/client"
	"github.com/hivespace/hivechat/config"
	"github.com/hivespace/hivechat/logging"
	"github.com/hivespace/hivechat/markdown"
	"github.com/hivespace/hivechat/plain"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/session"
	"github.com/hivespace/hivechat/stream"
	"github.com/hivespace/hivechat/style"
	"github.com/hivespace/hivechat/telemetry"
	"github.com/hivespace/hivechat/tokens"
	"github.com/hivespace/hivechat/view"
)

var version = "dev"

func main() {
	profileFlag := flag.String("profile", "", "Named profile for state isolation (~/.hivechat/profiles/<name>)")
	urlFlag := flag.String("url", "", "Chat API base URL (overrides config and "+config.EnvURL+")")
	plainFlag := flag.Bool("plain", false, "Line-mode console instead of the full-screen UI")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors")
	noStream := flag.Bool("no-stream", false, "Wait for whole replies instead of streaming")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.BoolVar(showVersion, "V", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hivechat %s\n", version)
		os.Exit(0)
	}

	if err := run(*profileFlag, *urlFlag, *plainFlag, *noColor, *noStream); err != nil {
		fmt.Fprintf(os.Stderr, "hivechat: %v\n", err)
		os.Exit(1)
	}
}

func run(profile, baseURL string, plainMode, noColor, noStream bool) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer cancel()

	dir, err := config.ProfileDir(profile)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("profile dir: %w", err)
	}

	cfg := config.Resolve(dir)
	if _, err := os.Stat(config.Path(dir)); errors.Is(err, fs.ErrNotExist) {
		_ = config.Save(dir, config.Defaults())
	}
	if baseURL != "" {
		cfg.Server.URL = baseURL
	}
	if noStream {
		cfg.Server.Streaming = false
	}
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	plainMode = plainMode || !interactive

	log, closeLog, err := logging.New(dir, cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog.Close()
	log.WithFields(logrus.Fields{"version": version, "server": cfg.Server.URL, "plain": plainMode}).Info("starting")

	tracer, meter, shutdown, err := telemetry.Init(ctx, dir, cfg.Telemetry, version, log)
	if err != nil {
		log.WithError(err).Warn("telemetry disabled")
		tracer, meter, shutdown = nil, nil, func() {}
	}
	defer shutdown()

	if noColor || plainMode {
		lipgloss.SetColorProfile(termenv.Ascii)
		style.SetTheme("none")
	} else if !style.SetTheme(cfg.UI.Theme) {
		style.SetTheme("auto")
	}
	markdown.Configure(style.Current().Markdown, 0)

	api := client.New(cfg.Server.URL)
	api.SetTimeout(cfg.Timeout())

	zoom := render.NewZoomRegistry(nil)
	renderer := render.New(zoom)
	renderer.UserLabel = cfg.UI.UserLabel
	renderer.AssistantLabel = cfg.UI.AssistantLabel

	opts := stream.Options{
		DisableStreaming: !cfg.Server.Streaming,
		Logger:           log,
		Tracer:           tracer,
		Meter:            meter,
	}

	if plainMode {
		renderer.Format = func(s string) string { return s }
		console := plain.NewConsole(os.Stdout, os.Stderr)
		ctl := newController(api, console, console, console, renderer, cfg, log)
		opts.Refresh = ctl.RefreshHook(ctx)
		ctl.Submitter = stream.New(api, console, renderer, console, opts)

		line := liner.NewLiner()
		defer line.Close()
		line.SetCtrlCAborts(true)
		repl := &plain.REPL{Controller: ctl, Console: console, Prompt: line, Log: log, Interrupt: true}
		return repl.Run(ctx)
	}

	bridge := app.NewBridge()
	zoom.SetOpener(bridge.OpenZoom)
	ctl := newController(api, bridge, bridge, bridge, renderer, cfg, log)
	opts.Refresh = ctl.RefreshHook(ctx)
	opts.OnState = bridge.StreamState
	ingestor := stream.New(api, bridge, renderer, bridge, opts)
	ctl.Submitter = ingestor

	var counter *tokens.Counter
	if cfg.UI.ShowTokens {
		counter = tokens.New()
		go func() {
			if err := counter.Warm(); err != nil {
				log.WithError(err).Debug("tokenizer unavailable, estimating")
			}
		}()
	}

	m := app.New(ctx, app.Deps{
		Controller: ctl,
		Ingestor:   ingestor,
		Zoom:       zoom,
		Tokens:     counter,
		Config:     cfg,
		Version:    version,
		Server:     serverLabel(cfg.Server.URL),
		Log:        log,
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	bridge.Attach(p)

	go func() {
		if err := config.Watch(ctx, dir, log, bridge.ConfigReloaded); err != nil {
			log.WithError(err).Warn("config watch stopped")
		}
	}()

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func newController(api *client.Client, v view.View, list view.SessionList, n view.Notifier,
	r *render.Renderer, cfg config.Config, log logrus.FieldLogger) *session.Controller {
	ctl := session.NewController(api, v, list, n, r)
	ctl.ExportDir = cfg.ExportDir()
	ctl.Log = log
	return ctl
}

// serverLabel is the host shown in the header.
func serverLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}

