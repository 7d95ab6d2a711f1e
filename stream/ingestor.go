// Package stream runs one message submission end to end: the optimistic
// user message, the assistant placeholder, the streamed reply and its
// terminal outcome.
package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/hivespace/hivechat/chat"
	"github.com/hivespace/hivechat/client"
	"github.com/hivespace/hivechat/render"
	"github.com/hivespace/hivechat/view"
)

const instrumentation = "github.com/hivespace/hivechat/stream"

// PlaceholderPrefix starts every ephemeral assistant message ID.
const PlaceholderPrefix = "stream-"

var (
	// ErrTruncated means the reply body ended before a complete or error
	// frame.
	ErrTruncated = errors.New("stream ended before a terminal frame")
	// ErrRejected is a non-streamed reply with success=false.
	ErrRejected = errors.New("message rejected by server")
)

// ServerError is the content of an explicit error frame.
type ServerError struct {
	Message string
}

func (e *ServerError) Error() string {
	if e.Message == "" {
		return "server error"
	}
	return "server error: " + e.Message
}

// Sender is the part of the API client the ingestor needs.
// *client.Client satisfies it.
type Sender interface {
	SendMessageStream(ctx context.Context, req client.SendMessageRequest) (io.ReadCloser, error)
	SendMessage(ctx context.Context, req client.SendMessageRequest) (*client.SendMessageResponse, error)
}

// Result describes how a submission ended.
type Result struct {
	State         State
	Failure       FailureKind
	Err           error
	SessionID     string
	UserMessageID string
	PlaceholderID string
	// ServerMessageID is the ai_message ID of the complete frame, or the
	// ai_response ID of a non-streamed reply.
	ServerMessageID string
	// Text is the accumulated reply.
	Text      string
	Chunks    int
	Malformed int

	zoomGen uint64
}

// Options tune an Ingestor. The zero value streams, logs nowhere and uses
// the global OpenTelemetry providers.
type Options struct {
	// DisableStreaming switches to the single POST /messages/send call.
	DisableStreaming bool
	Logger           logrus.FieldLogger
	Tracer           trace.Tracer
	Meter            metric.Meter
	Now              func() time.Time
	NewID            func() string
	// Refresh runs on its own goroutine after every submission.
	Refresh func()
	// OnState observes every transition.
	OnState func(sessionID string, s State)
}

// Ingestor submits messages and feeds their replies into a View.
// Submissions cancel their in-flight predecessor.
type Ingestor struct {
	sender   Sender
	view     view.View
	renderer *render.Renderer
	notifier view.Notifier
	opts     Options
	log      logrus.FieldLogger
	tracer   trace.Tracer

	frames    metric.Int64Counter
	malformed metric.Int64Counter
	failures  metric.Int64Counter

	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

func New(sender Sender, v view.View, r *render.Renderer, n view.Notifier, opts Options) *Ingestor {
	if opts.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		opts.Logger = l
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(instrumentation)
	}
	if opts.Meter == nil {
		opts.Meter = otel.Meter(instrumentation)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if n == nil {
		n = view.NotifierFunc(func(view.Level, string) {})
	}
	in := &Ingestor{
		sender:   sender,
		view:     v,
		renderer: r,
		notifier: n,
		opts:     opts,
		log:      opts.Logger.WithField("component", "stream"),
		tracer:   opts.Tracer,
	}
	in.frames = counter(opts.Meter, "hivechat.stream.frames", "Stream frames received")
	in.malformed = counter(opts.Meter, "hivechat.stream.malformed_frames", "Stream lines skipped as malformed")
	in.failures = counter(opts.Meter, "hivechat.stream.failures", "Failed submissions by kind")
	return in
}

func counter(m metric.Meter, name, desc string) metric.Int64Counter {
	c, err := m.Int64Counter(name, metric.WithDescription(desc))
	if err != nil {
		c, _ = noop.NewMeterProvider().Meter(instrumentation).Int64Counter(name)
	}
	return c
}

// Streaming reports whether replies are streamed.
func (in *Ingestor) Streaming() bool { return !in.opts.DisableStreaming }

// Cancel stops the in-flight submission, if any.
func (in *Ingestor) Cancel() {
	in.mu.Lock()
	if in.cancel != nil {
		in.cancel()
		in.cancel = nil
	}
	in.mu.Unlock()
}

// Submit sends text to sessionID and blocks until the reply reaches a
// terminal state. An empty session ID or blank text is a no-op that returns
// StateIdle. The returned error is Result.Err.
func (in *Ingestor) Submit(ctx context.Context, sessionID, text string) (Result, error) {
	text = strings.TrimSpace(text)
	if sessionID == "" || text == "" {
		return Result{State: StateIdle, SessionID: sessionID}, nil
	}

	ctx, release := in.begin(ctx)
	defer release()

	ctx, span := in.tracer.Start(ctx, "stream.submit",
		trace.WithAttributes(
			attribute.String("session.id", sessionID),
			attribute.Bool("stream.enabled", in.Streaming()),
		),
	)
	defer span.End()

	res := &Result{SessionID: sessionID, zoomGen: in.renderer.ZoomGeneration()}
	defer in.finish(ctx, span, res)

	now := in.opts.Now()
	user := chat.Message{ID: in.opts.NewID(), Role: chat.RoleUser, Text: text, Timestamp: now}
	res.UserMessageID = user.ID
	in.view.AppendMessage(in.renderer.Render(user))
	in.view.ScrollToEnd()

	res.PlaceholderID = PlaceholderPrefix + in.opts.NewID()
	in.view.AppendMessage(in.renderer.Render(chat.Message{
		ID:        res.PlaceholderID,
		Role:      chat.RoleAssistant,
		Timestamp: now,
	}))
	in.view.ScrollToEnd()
	in.transition(res, StateSending)

	req := client.SendMessageRequest{SessionID: sessionID, Message: text}
	if in.opts.DisableStreaming {
		in.sendOnce(ctx, req, res)
		return *res, res.Err
	}

	body, err := in.sender.SendMessageStream(ctx, req)
	if err != nil {
		in.abort(ctx, res, err)
		return *res, res.Err
	}
	defer body.Close()
	in.consume(ctx, body, res)
	return *res, res.Err
}

// begin registers a new in-flight submission, cancelling the previous one.
func (in *Ingestor) begin(parent context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(parent)
	in.mu.Lock()
	if in.cancel != nil {
		in.cancel()
	}
	in.seq++
	seq := in.seq
	in.cancel = cancel
	in.mu.Unlock()

	return ctx, func() {
		in.mu.Lock()
		if in.seq == seq {
			in.cancel = nil
		}
		in.mu.Unlock()
		cancel()
	}
}

func (in *Ingestor) consume(ctx context.Context, body io.Reader, res *Result) {
	fr := client.NewFrameReader(body)
	fr.OnFirstLine = func() { in.transition(res, StateStreaming) }
	fr.OnWarning = func(w client.ParseWarning) {
		res.Malformed++
		in.malformed.Add(ctx, 1)
		in.log.WithError(w.Err).WithFields(logrus.Fields{
			"session": res.SessionID,
			"line":    clip(w.Line, 200),
		}).Warn("skipping malformed stream frame")
	}

	var acc strings.Builder
	for {
		frame, err := fr.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = ErrTruncated
			}
			in.abortPartial(ctx, res, acc.Len() > 0, err)
			return
		}
		in.frames.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(frame.Type))))

		switch frame.Type {
		case client.FrameChunk:
			res.Chunks++
			acc.WriteString(frame.Content)
			res.Text = acc.String()
			in.view.UpdateMessage(res.PlaceholderID, in.renderer.FormatAssistant(res.Text))
			in.attachImages(res, res.Text)
			in.view.ScrollToEnd()

		case client.FrameComplete:
			if frame.AIMessage != nil {
				res.ServerMessageID = frame.AIMessage.ID
			}
			if acc.Len() == 0 {
				// Nothing arrived; drop the typing affordance.
				in.view.UpdateMessage(res.PlaceholderID, "")
			}
			in.transition(res, StateCompleted)
			return

		case client.FrameError:
			text := frame.Content
			if text == "" {
				text = errorText("")
			}
			in.view.UpdateMessage(res.PlaceholderID, in.renderer.ErrorBody(text))
			in.attachImages(res, "")
			in.view.ScrollToEnd()
			res.Failure = FailureServer
			res.Err = &ServerError{Message: frame.Content}
			in.transition(res, StateFailed)
			in.notifier.Notify(view.LevelError, errorText(frame.Content))
			return
		}
	}
}

func (in *Ingestor) sendOnce(ctx context.Context, req client.SendMessageRequest, res *Result) {
	resp, err := in.sender.SendMessage(ctx, req)
	if err == nil && !resp.Success {
		err = ErrRejected
	}
	if err != nil {
		in.abort(ctx, res, err)
		return
	}
	if resp.AIResponse != nil {
		res.ServerMessageID = resp.AIResponse.ID
		res.Text = resp.AIResponse.Text
	}
	in.view.UpdateMessage(res.PlaceholderID, in.renderer.FormatAssistant(res.Text))
	in.attachImages(res, res.Text)
	in.view.ScrollToEnd()
	in.transition(res, StateCompleted)
}

func (in *Ingestor) abort(ctx context.Context, res *Result, err error) {
	in.abortPartial(ctx, res, false, err)
}

// abortPartial ends a submission that never reached a terminal frame. A
// cancelled one keeps any partial text; any other failure removes the
// placeholder.
func (in *Ingestor) abortPartial(ctx context.Context, res *Result, partial bool, err error) {
	if ctx.Err() != nil {
		if !partial {
			in.view.RemoveMessage(res.PlaceholderID)
			in.attachImages(res, "")
		}
		res.Err = ctx.Err()
		in.transition(res, StateCancelled)
		return
	}

	in.view.RemoveMessage(res.PlaceholderID)
	in.attachImages(res, "")
	res.Failure = FailureTransport
	res.Err = fmt.Errorf("send message: %w", err)
	in.transition(res, StateFailed)
	in.notifier.Notify(view.LevelError, "Failed to send message: "+err.Error())
}

// attachImages registers the placeholder's images unless a session switch
// has reset the view since the submission began.
func (in *Ingestor) attachImages(res *Result, source string) {
	in.renderer.AttachImagesIn(res.zoomGen, res.PlaceholderID, source)
}

func (in *Ingestor) transition(res *Result, to State) {
	from := res.State
	res.State = to
	in.log.WithFields(logrus.Fields{
		"session": res.SessionID,
		"from":    from.String(),
		"to":      to.String(),
	}).Debug("stream state")
	if in.opts.OnState != nil {
		in.opts.OnState(res.SessionID, to)
	}
}

func (in *Ingestor) finish(ctx context.Context, span trace.Span, res *Result) {
	span.SetAttributes(
		attribute.String("stream.state", res.State.String()),
		attribute.Int("stream.chunks", res.Chunks),
		attribute.Int("stream.malformed", res.Malformed),
	)
	if res.State == StateFailed {
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, res.Err.Error())
		in.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", string(res.Failure))))
	}
	in.log.WithFields(logrus.Fields{
		"session":   res.SessionID,
		"state":     res.State.String(),
		"chunks":    res.Chunks,
		"malformed": res.Malformed,
	}).Info("submission finished")

	if in.opts.Refresh != nil {
		go in.opts.Refresh()
	}
}

func errorText(content string) string {
	if content == "" {
		return "The assistant reported an error"
	}
	return "Assistant error: " + render.Escape(content)
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
